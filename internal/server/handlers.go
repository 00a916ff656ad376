package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/pixelmill/pixelmill-mcp/internal/config"
	"github.com/pixelmill/pixelmill-mcp/internal/detect"
	"github.com/pixelmill/pixelmill-mcp/internal/imgops"
	"github.com/pixelmill/pixelmill-mcp/internal/models"
	"github.com/pixelmill/pixelmill-mcp/internal/ocr"
)

// pathResult is the common result shape of every tool that writes an image.
type pathResult struct {
	OutputPath string `json:"output_path"`
}

func decodeArgs(args json.RawMessage, into any) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return json.Unmarshal(args, into)
}

// drawDefaults builds the configured fallbacks for the draw tools. The
// configured color is BGR, matching the tool argument format.
func (s *Server) drawDefaults() imgops.DrawDefaults {
	cfg := s.cfg.Current()
	col := color.NRGBA{A: 255}
	if len(cfg.Drawing.Color) == 3 {
		col = color.NRGBA{
			B: uint8(cfg.Drawing.Color[0]),
			G: uint8(cfg.Drawing.Color[1]),
			R: uint8(cfg.Drawing.Color[2]),
			A: 255,
		}
	}
	return imgops.DrawDefaults{
		Color:     col,
		Thickness: cfg.Drawing.Thickness,
		FontScale: cfg.Text.FontScale,
	}
}

func (s *Server) handleCrop(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string `json:"input_path"`
		X1         int    `json:"x1"`
		Y1         int    `json:"y1"`
		X2         int    `json:"x2"`
		Y2         int    `json:"y2"`
		OutputPath string `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.Crop(a.InputPath, a.X1, a.Y1, a.X2, a.Y2, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleResize(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath     string  `json:"input_path"`
		Width         int     `json:"width"`
		Height        int     `json:"height"`
		ScaleFactor   float64 `json:"scale_factor"`
		Interpolation string  `json:"interpolation"`
		OutputPath    string  `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Interpolation == "" {
		a.Interpolation = s.cfg.Current().Resize.Interpolation
	}
	out, err := imgops.Resize(a.InputPath, a.Width, a.Height, a.ScaleFactor, a.Interpolation, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleRotate(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string  `json:"input_path"`
		Angle      float64 `json:"angle"`
		OutputPath string  `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.Rotate(a.InputPath, a.Angle, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleBlur(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string            `json:"input_path"`
		Areas      []imgops.BlurArea `json:"areas"`
		OutputPath string            `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.Blur(a.InputPath, a.Areas, s.cfg.Current().Blur.Strength, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleFill(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath   string            `json:"input_path"`
		Areas       []imgops.FillArea `json:"areas"`
		InvertAreas bool              `json:"invert_areas"`
		OutputPath  string            `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.Fill(a.InputPath, a.Areas, a.InvertAreas, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleOverlay(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		BaseImagePath    string `json:"base_image_path"`
		OverlayImagePath string `json:"overlay_image_path"`
		X                int    `json:"x"`
		Y                int    `json:"y"`
		OutputPath       string `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.Overlay(a.BaseImagePath, a.OverlayImagePath, a.X, a.Y, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleDrawRectangles(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string             `json:"input_path"`
		Rectangles []imgops.Rectangle `json:"rectangles"`
		OutputPath string             `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.DrawRectangles(a.InputPath, a.Rectangles, s.drawDefaults(), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleDrawCircles(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string          `json:"input_path"`
		Circles    []imgops.Circle `json:"circles"`
		OutputPath string          `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.DrawCircles(a.InputPath, a.Circles, s.drawDefaults(), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleDrawLines(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string        `json:"input_path"`
		Lines      []imgops.Line `json:"lines"`
		OutputPath string        `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.DrawLines(a.InputPath, a.Lines, s.drawDefaults(), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleDrawArrows(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string         `json:"input_path"`
		Arrows     []imgops.Arrow `json:"arrows"`
		OutputPath string         `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.DrawArrows(a.InputPath, a.Arrows, s.drawDefaults(), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleDrawTexts(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string        `json:"input_path"`
		Texts      []imgops.Text `json:"texts"`
		OutputPath string        `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.DrawTexts(a.InputPath, a.Texts, s.drawDefaults(), a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleChangeColor(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string `json:"input_path"`
		Palette    string `json:"palette"`
		OutputPath string `json:"output_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := imgops.ChangeColor(a.InputPath, a.Palette, a.OutputPath)
	if err != nil {
		return nil, err
	}
	return pathResult{OutputPath: out}, nil
}

func (s *Server) handleGetMetainfo(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath string `json:"input_path"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	return imgops.GetMetaInfo(a.InputPath)
}

// detectResult is the detect tool's result shape.
type detectResult struct {
	ImagePath  string             `json:"image_path"`
	Detections []detect.Detection `json:"detections"`
}

func (s *Server) handleDetect(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath  string   `json:"input_path"`
		Confidence *float64 `json:"confidence"`
		ModelName  string   `json:"model_name"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	cfg := s.cfg.Current()
	confidence := floatOrDefault(a.Confidence, cfg.Detection.ConfidenceThreshold)
	if a.ModelName == "" {
		a.ModelName = cfg.Detection.DefaultModel
	}

	dets, err := s.runDetection(a.InputPath, a.ModelName, confidence)
	if err != nil {
		return nil, err
	}
	return detectResult{ImagePath: a.InputPath, Detections: dets}, nil
}

// floatOrDefault keeps an explicit zero distinct from an absent argument:
// only a nil pointer falls back to the configured default.
func floatOrDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// findResult is the find tool's result shape.
type findResult struct {
	ImagePath   string         `json:"image_path"`
	Description string         `json:"description"`
	Found       bool           `json:"found"`
	Matches     []detect.Match `json:"matches"`
}

func (s *Server) handleFind(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath        string   `json:"input_path"`
		Description      string   `json:"description"`
		Confidence       *float64 `json:"confidence"`
		ModelName        string   `json:"model_name"`
		ReturnAllMatches bool     `json:"return_all_matches"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	cfg := s.cfg.Current()
	confidence := floatOrDefault(a.Confidence, cfg.Find.ConfidenceThreshold)
	if a.ModelName == "" {
		a.ModelName = cfg.Find.DefaultModel
	}

	dets, err := s.runDetection(a.InputPath, a.ModelName, confidence)
	if err != nil {
		return nil, err
	}

	matches := detect.FindByDescription(a.Description, dets)
	if matches == nil {
		matches = []detect.Match{}
	}
	if !a.ReturnAllMatches && len(matches) > 1 {
		matches = matches[:1]
	}
	return findResult{
		ImagePath:   a.InputPath,
		Description: a.Description,
		Found:       len(matches) > 0,
		Matches:     matches,
	}, nil
}

// runDetection loads the image and runs the named model over it.
func (s *Server) runDetection(inputPath, modelName string, confidence float64) ([]detect.Detection, error) {
	img, err := imgops.Open(inputPath)
	if err != nil {
		return nil, err
	}
	det, err := s.detector(modelName)
	if err != nil {
		return nil, err
	}
	dets, err := det.Detect(img, confidence)
	if err != nil {
		return nil, err
	}
	if dets == nil {
		dets = []detect.Detection{}
	}
	return dets, nil
}

func (s *Server) handleOCR(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		InputPath string `json:"input_path"`
		Language  string `json:"language"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.cfg.Current().OCR.Language
	}
	return ocr.ExtractText(a.InputPath, a.Language)
}

func (s *Server) handleGetModels(ctx context.Context, args json.RawMessage) (any, error) {
	list, err := models.List()
	if err != nil {
		return nil, err
	}
	return map[string]any{"models": list}, nil
}

func (s *Server) handleConfig(ctx context.Context, args json.RawMessage) (any, error) {
	var a struct {
		Action  string `json:"action"`
		Key     string `json:"key"`
		Value   any    `json:"value"`
		Persist bool   `json:"persist"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Action == "" {
		a.Action = "get"
	}

	switch a.Action {
	case "get":
		value, err := s.cfg.Get(a.Key)
		if err != nil {
			return nil, err
		}
		result := map[string]any{"value": value, "overrides": s.cfg.Overrides()}
		if a.Key != "" {
			result["key"] = a.Key
		}
		return result, nil

	case "set":
		if a.Key == "" {
			return nil, fmt.Errorf("the 'set' action requires a key (available: %v)", config.Keys())
		}
		if err := s.cfg.Set(a.Key, a.Value, a.Persist); err != nil {
			return nil, err
		}
		value, _ := s.cfg.Get(a.Key)
		return map[string]any{"key": a.Key, "value": value, "persisted": a.Persist}, nil

	case "reset":
		s.cfg.Reset()
		return map[string]any{"reset": true}, nil

	default:
		return nil, fmt.Errorf("unknown config action %q: choose from get, set, reset", a.Action)
	}
}
