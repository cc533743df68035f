package server

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/staff-notes-mcp/internal/detection"
	"github.com/ironsheep/staff-notes-mcp/internal/imaging"
	"github.com/ironsheep/staff-notes-mcp/internal/playback"
	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

// ErrInvalidArguments wraps argument decoding and validation failures.
var ErrInvalidArguments = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "staff_detect_note").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments jsoniter.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return code -32602 and tool failures -32000. A stroke that
// does not name a note is not a failure: the result reports detected=false.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	entry := s.log.WithFields(logrus.Fields{
		"call_id": uuid.NewString(),
		"tool":    params.Name,
	})
	start := time.Now()

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		entry.WithError(err).Warn("tool failed")
		if errors.Is(err, ErrInvalidArguments) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	entry.WithField("duration", time.Since(start)).Info("tool completed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args jsoniter.RawMessage) (interface{}, error) {
	switch name {
	case "staff_detect_note":
		return s.handleDetectNote(args)
	case "staff_detect_note_image":
		return s.handleDetectNoteImage(args)
	case "staff_detect_geometry":
		return s.handleDetectGeometry(args)
	case "staff_render_note":
		return s.handleRenderNote(args)
	case "staff_export_midi":
		return s.handleExportMIDI(args)
	case "staff_conventions":
		return s.handleConventions(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// decodeArgs unmarshals and validates tool arguments. Missing arguments are
// treated as an empty object.
func (s *Server) decodeArgs(args []byte, v interface{}) error {
	if len(bytes.TrimSpace(args)) == 0 || string(bytes.TrimSpace(args)) == "null" {
		args = []byte("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

func (s *Server) conventionFor(name string) (staff.Convention, error) {
	if name == "" {
		return s.convention, nil
	}
	c, err := staff.LookupConvention(name)
	if err != nil {
		return staff.Convention{}, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return c, nil
}

// === Shared argument blocks ===

type geometryArgs struct {
	DistanceToFirstLine  *float64 `json:"distance_to_first_line"`
	DistanceBetweenLines *float64 `json:"distance_between_lines" validate:"omitempty,gt=0"`
	CanvasHeight         *float64 `json:"canvas_height" validate:"omitempty,gt=0"`
}

// resolve returns the geometry described by the arguments. ok is false when
// none was given.
func (a geometryArgs) resolve() (g staff.Geometry, ok bool, err error) {
	switch {
	case a.DistanceToFirstLine != nil && a.DistanceBetweenLines != nil:
		g, err = staff.NewGeometry(*a.DistanceToFirstLine, *a.DistanceBetweenLines)
	case a.DistanceToFirstLine != nil || a.DistanceBetweenLines != nil:
		return staff.Geometry{}, false, fmt.Errorf("%w: distance_to_first_line and distance_between_lines must be given together", ErrInvalidArguments)
	case a.CanvasHeight != nil:
		g, err = staff.GeometryFromCanvasHeight(*a.CanvasHeight)
	default:
		return staff.Geometry{}, false, nil
	}
	if err != nil {
		return staff.Geometry{}, false, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return g, true, nil
}

type imageSourceArgs struct {
	Path        string `json:"path" validate:"required_without=ImageBase64"`
	ImageBase64 string `json:"image_base64" validate:"required_without=Path"`

	// Refresh drops any cached decode of Path before loading it.
	Refresh bool `json:"refresh"`
}

func (s *Server) loadImage(a imageSourceArgs) (image.Image, error) {
	if a.Path != "" {
		if a.Refresh {
			s.cache.Evict(a.Path)
		}
		return s.cache.Load(a.Path)
	}
	return imaging.DecodeBase64(a.ImageBase64)
}

// === Results ===

// NoteResult describes a named note.
type NoteResult struct {
	Name      string `json:"name"`
	Letter    string `json:"letter"`
	Octave    int    `json:"octave"`
	Step      int    `json:"step"`
	Placement string `json:"placement"`
	MIDIKey   *int   `json:"midi_key,omitempty"`
	SoundKey  string `json:"sound_key"`
	SoundFile string `json:"sound_file,omitempty"`
}

// InkResult is the vertical extent a detection was made from.
type InkResult struct {
	Upper  float64 `json:"upper"`
	Lower  float64 `json:"lower"`
	Middle float64 `json:"middle"`
}

// DetectResult is the outcome of a note detection.
type DetectResult struct {
	// Detected is false when the stroke does not name a note; Reason says why.
	Detected bool   `json:"detected"`
	Reason   string `json:"reason,omitempty"`

	Note       *NoteResult           `json:"note,omitempty"`
	Line       *staff.LinePrediction `json:"nearest_line,omitempty"`
	Ink        *InkResult            `json:"ink,omitempty"`
	Geometry   staff.Geometry        `json:"geometry"`
	Convention string                `json:"convention"`

	// Set by staff_detect_note_image only.
	Canvas *imaging.CanvasInfo    `json:"canvas,omitempty"`
	Scan   *imaging.InkScan       `json:"scan,omitempty"`
	Staff  *detection.StaffResult `json:"staff,omitempty"`
}

func (s *Server) describeNote(n staff.Note) *NoteResult {
	r := &NoteResult{
		Name:      n.String(),
		Letter:    n.Letter,
		Octave:    n.Octave,
		Step:      n.Step,
		Placement: n.Placement.String(),
		SoundKey:  playback.SoundKey(n),
	}
	if key, err := playback.MIDIKey(n); err == nil {
		k := int(key)
		r.MIDIKey = &k
	}
	if s.sounds != nil {
		if path, err := s.sounds.Resolve(n); err == nil {
			r.SoundFile = path
		}
	}
	return r
}

// detect runs the detector and turns "no note" outcomes into a result
// instead of an error.
func (s *Server) detect(g staff.Geometry, conv staff.Convention, ink staff.InkExtent) (*DetectResult, error) {
	d, err := staff.NewDetector(g, conv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}

	res := &DetectResult{Geometry: g, Convention: conv.Name}
	if ink.Defined() {
		p := g.NearestLine(ink.Middle())
		res.Line = &p
		res.Ink = &InkResult{Upper: ink.Upper, Lower: ink.Lower, Middle: ink.Middle()}
	}

	note, err := d.Detect(ink)
	if err != nil {
		if staff.IsUndetectable(err) {
			res.Reason = err.Error()
			return res, nil
		}
		return nil, err
	}

	res.Detected = true
	res.Note = s.describeNote(note)
	return res, nil
}

// === Note detection ===

type detectNoteArgs struct {
	geometryArgs
	Upper      *float64      `json:"upper"`
	Lower      *float64      `json:"lower"`
	Points     []staff.Point `json:"points"`
	Convention string        `json:"convention"`
}

func (a detectNoteArgs) ink() staff.InkExtent {
	if len(a.Points) > 0 {
		var t staff.InkTracker
		t.AddPoints(a.Points)
		return t.Extent()
	}
	if a.Upper != nil && a.Lower != nil {
		return staff.NewInkExtent(*a.Upper, *a.Lower)
	}
	return staff.InkExtent{}
}

func (s *Server) detectNote(a detectNoteArgs) (*DetectResult, error) {
	g, ok, err := a.resolve()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: staff geometry is required (distances or canvas_height)", ErrInvalidArguments)
	}
	conv, err := s.conventionFor(a.Convention)
	if err != nil {
		return nil, err
	}
	return s.detect(g, conv, a.ink())
}

func (s *Server) handleDetectNote(args jsoniter.RawMessage) (interface{}, error) {
	var a detectNoteArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return s.detectNote(a)
}

type detectNoteImageArgs struct {
	imageSourceArgs
	geometryArgs
	Convention       string          `json:"convention"`
	Threshold        int             `json:"threshold" validate:"omitempty,min=1,max=255"`
	InkColor         string          `json:"ink_color" validate:"omitempty,hexcolor"`
	ColorTolerance   float64         `json:"color_tolerance" validate:"omitempty,gt=0"`
	Region           *imaging.Region `json:"region"`
	MinCoverage      float64         `json:"min_coverage" validate:"omitempty,gt=0,lte=1"`
	IgnoreStaffLines *bool           `json:"ignore_staff_lines"`
}

func (s *Server) handleDetectNoteImage(args jsoniter.RawMessage) (interface{}, error) {
	var a detectNoteImageArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	conv, err := s.conventionFor(a.Convention)
	if err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.imageSourceArgs)
	if err != nil {
		return nil, err
	}

	g, ok, err := a.geometryArgs.resolve()
	if err != nil {
		return nil, err
	}

	opts := imaging.InkOptions{
		Threshold:      s.threshold,
		InkColor:       a.InkColor,
		ColorTolerance: a.ColorTolerance,
		Region:         a.Region,
	}
	if a.Threshold > 0 {
		opts.Threshold = uint8(a.Threshold)
	}

	ignoreLines := a.IgnoreStaffLines == nil || *a.IgnoreStaffLines

	var staffResult *detection.StaffResult
	if !ok {
		staffResult, err = detection.DetectStaff(img, a.MinCoverage)
		if err != nil {
			return nil, fmt.Errorf("no geometry given and none found in the image: %w", err)
		}
		g = staffResult.Geometry
	} else if ignoreLines {
		// the geometry is given, but printed lines still have to be kept out
		// of the ink; a canvas without printed lines has nothing to exclude
		staffResult, err = detection.DetectStaff(img, a.MinCoverage)
		if err != nil && !errors.Is(err, detection.ErrNoStaff) {
			return nil, err
		}
	}
	if ignoreLines && staffResult != nil {
		opts.IgnoreRows = staffResult.LineRows
	}

	scan, err := imaging.ScanInk(img, opts)
	if err != nil {
		return nil, err
	}

	res, err := s.detect(g, conv, scan.Extent())
	if err != nil {
		return nil, err
	}
	canvas := imaging.DescribeCanvas(img)
	res.Canvas = &canvas
	res.Scan = scan
	res.Staff = staffResult
	return res, nil
}

// === Staff geometry ===

type detectGeometryArgs struct {
	imageSourceArgs
	MinCoverage float64 `json:"min_coverage" validate:"omitempty,gt=0,lte=1"`
}

func (s *Server) handleDetectGeometry(args jsoniter.RawMessage) (interface{}, error) {
	var a detectGeometryArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.imageSourceArgs)
	if err != nil {
		return nil, err
	}
	return detection.DetectStaff(img, a.MinCoverage)
}

// === Rendering ===

var defaultRenderGeometry = staff.Geometry{DistanceToFirstLine: 40, DistanceBetweenLines: 20}

type renderNoteArgs struct {
	geometryArgs
	Note       string `json:"note" validate:"required_without=Step"`
	Step       *int   `json:"step"`
	Convention string `json:"convention"`
	Width      int    `json:"width" validate:"omitempty,min=1,max=4096"`
	Height     int    `json:"height" validate:"omitempty,min=1,max=4096"`
	Background string `json:"background" validate:"omitempty,hexcolor"`
	LineColor  string `json:"line_color" validate:"omitempty,hexcolor"`
	NoteColor  string `json:"note_color" validate:"omitempty,hexcolor"`
}

// RenderNoteResult is a rendered staff together with the note drawn on it.
type RenderNoteResult struct {
	*imaging.RenderResult
	Note     *NoteResult    `json:"note"`
	Geometry staff.Geometry `json:"geometry"`
}

func (s *Server) handleRenderNote(args jsoniter.RawMessage) (interface{}, error) {
	var a renderNoteArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}
	conv, err := s.conventionFor(a.Convention)
	if err != nil {
		return nil, err
	}

	g, ok, err := a.resolve()
	if err != nil {
		return nil, err
	}
	if !ok {
		g = defaultRenderGeometry
	}

	var note staff.Note
	if a.Step != nil {
		note = conv.Note(*a.Step, placementForStep(*a.Step))
	} else {
		letter, octave, err := parseNoteName(a.Note)
		if err != nil {
			return nil, err
		}
		step, found := conv.StepFor(letter, octave)
		if !found {
			return nil, fmt.Errorf("%w: %s is outside the %s staff", ErrInvalidArguments, a.Note, conv.Name)
		}
		note = conv.Note(step, placementForStep(step))
	}

	rendered, err := imaging.RenderNote(g, note, imaging.RenderOptions{
		Width:      a.Width,
		Height:     a.Height,
		Background: a.Background,
		LineColor:  a.LineColor,
		NoteColor:  a.NoteColor,
	})
	if err != nil {
		return nil, err
	}
	return &RenderNoteResult{RenderResult: rendered, Note: s.describeNote(note), Geometry: g}, nil
}

// placementForStep reports how a step is drawn: even steps sit on a line,
// odd steps in the space below it.
func placementForStep(step int) staff.Placement {
	if step%2 == 0 {
		return staff.OnLine
	}
	return staff.SpaceBelow
}

var noteNamePattern = regexp.MustCompile(`^([A-Ga-g])(-?\d+)$`)

// parseNoteName splits a name such as "E0" or "B-1" into letter and octave.
func parseNoteName(name string) (string, int, error) {
	m := noteNamePattern.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return "", 0, fmt.Errorf("%w: invalid note name %q", ErrInvalidArguments, name)
	}
	octave, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("%w: invalid octave in %q", ErrInvalidArguments, name)
	}
	return strings.ToUpper(m[1]), octave, nil
}

// === MIDI export ===

type exportMIDIArgs struct {
	Notes           []string `json:"notes" validate:"required,min=1,dive,required"`
	BPM             float64  `json:"bpm" validate:"omitempty,gt=0,lte=1000"`
	TicksPerQuarter int      `json:"ticks_per_quarter" validate:"omitempty,min=1,max=32767"`
	Channel         int      `json:"channel" validate:"omitempty,min=0,max=15"`
	OutputPath      string   `json:"output_path"`
}

// MIDIExportResult describes an exported Standard MIDI File.
type MIDIExportResult struct {
	NoteCount  int    `json:"note_count"`
	Keys       []int  `json:"keys"`
	Bytes      int64  `json:"bytes"`
	Path       string `json:"path,omitempty"`
	MIDIBase64 string `json:"midi_base64,omitempty"`
	MimeType   string `json:"mime_type"`
}

func (s *Server) handleExportMIDI(args jsoniter.RawMessage) (interface{}, error) {
	var a exportMIDIArgs
	if err := s.decodeArgs(args, &a); err != nil {
		return nil, err
	}

	notes := make([]staff.Note, len(a.Notes))
	keys := make([]int, len(a.Notes))
	for i, name := range a.Notes {
		letter, octave, err := parseNoteName(name)
		if err != nil {
			return nil, err
		}
		notes[i] = staff.Note{Letter: letter, Octave: octave}
		key, err := playback.MIDIKey(notes[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		keys[i] = int(key)
	}

	var buf bytes.Buffer
	n, err := playback.WriteSMF(&buf, notes, playback.SMFOptions{
		TicksPerQuarter: uint16(a.TicksPerQuarter),
		BPM:             a.BPM,
		Channel:         uint8(a.Channel),
		TrackName:       serverName,
	})
	if err != nil {
		return nil, err
	}

	result := &MIDIExportResult{
		NoteCount: len(notes),
		Keys:      keys,
		Bytes:     n,
		MimeType:  "audio/midi",
	}
	if a.OutputPath != "" {
		if err := os.WriteFile(a.OutputPath, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write midi file: %w", err)
		}
		result.Path = a.OutputPath
	} else {
		result.MIDIBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	}
	return result, nil
}

// === Conventions ===

// StepInfo names one staff step under a convention.
type StepInfo struct {
	Step int    `json:"step"`
	Note string `json:"note"`
}

// ConventionInfo describes a built-in convention.
type ConventionInfo struct {
	Name    string             `json:"name"`
	Default bool               `json:"default"`
	MinLine int                `json:"min_line"`
	MaxLine int                `json:"max_line"`
	Octaves staff.OctaveScheme `json:"octaves"`
	Steps   []StepInfo         `json:"steps"`
}

// ConventionsResult lists the conventions the server knows.
type ConventionsResult struct {
	Conventions []ConventionInfo `json:"conventions"`
	Count       int              `json:"count"`
}

func (s *Server) conventions() *ConventionsResult {
	names := staff.ConventionNames()
	res := &ConventionsResult{Count: len(names)}
	for _, name := range names {
		c, _ := staff.LookupConvention(name)
		info := ConventionInfo{
			Name:    c.Name,
			Default: c.Name == s.convention.Name,
			MinLine: c.MinLine,
			MaxLine: c.MaxLine,
			Octaves: c.Octaves,
		}
		for step := 2*c.MinLine - 1; step <= 2*c.MaxLine+1; step++ {
			info.Steps = append(info.Steps, StepInfo{Step: step, Note: c.Note(step, placementForStep(step)).String()})
		}
		res.Conventions = append(res.Conventions, info)
	}
	return res
}

func (s *Server) handleConventions(_ jsoniter.RawMessage) (interface{}, error) {
	return s.conventions(), nil
}
