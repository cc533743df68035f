package main

import (
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/ironsheep/staff-notes-mcp/internal/config"
	"github.com/ironsheep/staff-notes-mcp/internal/playback"
	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type detectOutput struct {
	Detected  bool                  `json:"detected"`
	Reason    string                `json:"reason,omitempty"`
	Note      string                `json:"note,omitempty"`
	Step      int                   `json:"step"`
	Placement string                `json:"placement,omitempty"`
	MIDIKey   *int                  `json:"midi_key,omitempty"`
	SoundKey  string                `json:"sound_key,omitempty"`
	Line      *staff.LinePrediction `json:"nearest_line,omitempty"`
	Geometry  staff.Geometry        `json:"geometry"`
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Name the note for one stroke extent and print it as JSON",
	Example: `  staff-notes-mcp detect --upper 50 --lower 70 --to-first 40 --between 20
  staff-notes-mcp detect --upper 50 --lower 70 --canvas-height 160 --convention treble-line3`,
	RunE: runDetect,
}

func init() {
	f := detectCmd.Flags()
	f.Float64("upper", 0, "Top of the stroke (smallest y)")
	f.Float64("lower", 0, "Bottom of the stroke (largest y)")
	f.Float64("to-first", 0, "Y coordinate of the top staff line")
	f.Float64("between", 0, "Spacing between staff lines")
	f.Float64("canvas-height", 0, "Derive the geometry from the canvas height instead")
	f.String("convention", "", "Naming convention (default from STAFF_MCP_CONVENTION)")
	_ = detectCmd.MarkFlagRequired("upper")
	_ = detectCmd.MarkFlagRequired("lower")
}

func runDetect(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	upper, _ := f.GetFloat64("upper")
	lower, _ := f.GetFloat64("lower")

	var (
		geometry staff.Geometry
		err      error
	)
	switch {
	case f.Changed("between"):
		toFirst, _ := f.GetFloat64("to-first")
		between, _ := f.GetFloat64("between")
		geometry, err = staff.NewGeometry(toFirst, between)
	case f.Changed("canvas-height"):
		height, _ := f.GetFloat64("canvas-height")
		geometry, err = staff.GeometryFromCanvasHeight(height)
	default:
		return errors.New("either --between (with --to-first) or --canvas-height is required")
	}
	if err != nil {
		return err
	}

	convention, err := detectConvention(f.Lookup("convention").Value.String())
	if err != nil {
		return err
	}

	out, err := newDetectOutput(geometry, convention, staff.NewInkExtent(upper, lower))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// newDetectOutput runs the detector and fills in what the detect command prints.
func newDetectOutput(geometry staff.Geometry, convention staff.Convention, ink staff.InkExtent) (detectOutput, error) {
	out := detectOutput{Geometry: geometry}
	if ink.Defined() {
		p := geometry.NearestLine(ink.Middle())
		out.Line = &p
	}

	note, err := staff.Detect(geometry, convention, ink)
	switch {
	case staff.IsUndetectable(err):
		out.Reason = err.Error()
	case err != nil:
		return out, err
	default:
		out.Detected = true
		out.Note = note.String()
		out.Step = note.Step
		out.Placement = note.Placement.String()
		out.SoundKey = playback.SoundKey(note)
		if key, err := playback.MIDIKey(note); err == nil {
			k := int(key)
			out.MIDIKey = &k
		}
	}
	return out, nil
}

// detectConvention resolves the flag, falling back to the configured default.
func detectConvention(name string) (staff.Convention, error) {
	if name != "" {
		return staff.LookupConvention(name)
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return staff.Convention{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.Convention, nil
}
