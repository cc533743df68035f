package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func geometryProperties() map[string]interface{} {
	return map[string]interface{}{
		"distance_to_first_line": prop("number", "Y coordinate of the top staff line (line 0), in canvas units"),
		"distance_between_lines": prop("number", "Spacing between adjacent staff lines; must be positive"),
		"canvas_height":          prop("number", "Alternative to the two distances: derive them from a canvas split into eight bands (first line at height/4, spacing height/8)"),
	}
}

func imageSourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path":         prop("string", "Absolute path to a PNG, JPEG or GIF snapshot of the canvas"),
		"image_base64": prop("string", "The snapshot itself, base64 encoded (a data: URL prefix is accepted). Used when path is not given"),
		"refresh":      prop("boolean", "Re-read path from disk even if a cached copy looks current"),
	}
}

func conventionProperty() map[string]interface{} {
	return prop("string", "Naming convention: treble (default), treble-legacy, treble-line3 or treble-extended")
}

func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "staff_detect_note",
			Description: "Name the note a hand-drawn stroke represents on a five-line staff. " +
				"Give the stroke's vertical extent (upper/lower) or its raw points, plus the staff geometry. " +
				"Returns detected=false with a reason when the stroke is empty or too far from the staff.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(geometryProperties(), map[string]interface{}{
					"upper": prop("number", "Smallest y touched by the stroke (its top)"),
					"lower": prop("number", "Largest y touched by the stroke (its bottom)"),
					"points": map[string]interface{}{
						"type":        "array",
						"description": "Stroke points; when given, upper and lower are computed from them",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"x": prop("number", "X coordinate"),
								"y": prop("number", "Y coordinate"),
							},
							"required": []string{"y"},
						},
					},
					"convention": conventionProperty(),
				}),
			},
		},
		{
			Name: "staff_detect_note_image",
			Description: "Name the note drawn on a canvas snapshot. Ink is found by gray threshold or by colour. " +
				"Without geometry, the printed staff lines are located in the image and excluded from the ink.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(imageSourceProperties(), geometryProperties(), map[string]interface{}{
					"threshold":       prop("integer", "Gray level (1-255) below which an opaque pixel is ink. Default from server configuration"),
					"ink_color":       prop("string", "Only pixels close to this #RRGGBB colour count as ink"),
					"color_tolerance": prop("number", "CIE-Lab distance for ink_color matching. Default 0.15"),
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Limit the ink scan to this rectangle (x2, y2 exclusive)",
						"properties": map[string]interface{}{
							"x1": prop("integer", "Left edge"),
							"y1": prop("integer", "Top edge"),
							"x2": prop("integer", "Right edge (exclusive)"),
							"y2": prop("integer", "Bottom edge (exclusive)"),
						},
					},
					"min_coverage":       prop("number", "Fraction of a row that must be dark to count as a staff line when locating the staff. Default 0.5"),
					"ignore_staff_lines": prop("boolean", "Exclude located staff-line rows from the ink. Default true"),
					"convention":         conventionProperty(),
				}),
			},
		},
		{
			Name:        "staff_detect_geometry",
			Description: "Locate the printed staff lines in an image and return the staff geometry (distance to first line and spacing).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(imageSourceProperties(), map[string]interface{}{
					"min_coverage": prop("number", "Fraction (0-1] of a row that must be dark to count as a staff line. Default 0.5"),
				}),
			},
		},
		{
			Name:        "staff_render_note",
			Description: "Draw a note on a staff and return it as a base64-encoded PNG. Useful to show the user what was detected.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(geometryProperties(), map[string]interface{}{
					"note":       prop("string", "Note name such as E0, C1 or B-1 (letter plus octave)"),
					"step":       prop("integer", "Staff step instead of a name: 0 is the top line, each step is half a spacing down"),
					"width":      prop("integer", "Image width in pixels. Default 200"),
					"height":     prop("integer", "Image height in pixels. Default fits the staff and note"),
					"background": prop("string", "Background colour #RRGGBB. Default white"),
					"line_color": prop("string", "Staff line colour #RRGGBB. Default black"),
					"note_color": prop("string", "Note head colour #RRGGBB. Default black"),
					"convention": conventionProperty(),
				}),
			},
		},
		{
			Name:        "staff_export_midi",
			Description: "Write detected notes as a Standard MIDI File, one quarter note each. Octave 0 starts at middle C.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"notes": map[string]interface{}{
						"type":        "array",
						"description": "Note names in order, e.g. [\"E0\", \"G0\", \"C1\"]",
						"items":       map[string]interface{}{"type": "string"},
					},
					"bpm":               prop("number", "Tempo. Default 120"),
					"ticks_per_quarter": prop("integer", "File resolution. Default 480"),
					"channel":           prop("integer", "MIDI channel 0-15. Default 0"),
					"output_path":       prop("string", "Write the file here instead of returning it base64 encoded"),
				},
				"required": []string{"notes"},
			},
		},
		{
			Name:        "staff_conventions",
			Description: "List the note naming conventions with their line range, octave rule and the note at every step.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
