package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	internalimaging "github.com/parsolve/parsolve/internal/imaging"
)

// ToolCallParams carries the parameters of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall executes a tool and wraps the result in MCP's content
// format. Tool failures return a JSON-RPC error with code -32000.
func (s *Server) handleToolsCall(req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &Response{
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

func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "captcha_solve":
		return s.handleSolve(args)
	case "captcha_solve_region":
		return s.handleSolveRegion(args)
	case "captcha_locate":
		return s.handleLocate(args)
	case "captcha_engine_info":
		return s.handleEngineInfo(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

type solveArgs struct {
	Path    string `json:"path"`
	Enhance bool   `json:"enhance"`
	Color   string `json:"color"`
}

// SolveResult is the response payload of captcha_solve and
// captcha_solve_region.
type SolveResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Engine     string  `json:"engine"`
}

func (s *Server) handleSolve(args json.RawMessage) (interface{}, error) {
	var a solveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return s.solve(img, a.Enhance, a.Color)
}

type solveRegionArgs struct {
	Path    string `json:"path"`
	X1      int    `json:"x1"`
	Y1      int    `json:"y1"`
	X2      int    `json:"x2"`
	Y2      int    `json:"y2"`
	Enhance bool   `json:"enhance"`
	Color   string `json:"color"`
}

func (s *Server) handleSolveRegion(args json.RawMessage) (interface{}, error) {
	var a solveRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if a.X1 < bounds.Min.X || a.Y1 < bounds.Min.Y || a.X2 > bounds.Max.X || a.Y2 > bounds.Max.Y {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds %v",
			a.X1, a.Y1, a.X2, a.Y2, bounds)
	}
	if a.X1 >= a.X2 || a.Y1 >= a.Y2 {
		return nil, fmt.Errorf("invalid region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(img, image.Rect(a.X1, a.Y1, a.X2, a.Y2))
	return s.solve(cropped, a.Enhance, a.Color)
}

func (s *Server) solve(img image.Image, enhance bool, colorName string) (*SolveResult, error) {
	var err error
	if colorName != "" {
		img, err = internalimaging.FilterColor(img, colorName)
		if err != nil {
			return nil, err
		}
	}
	if enhance {
		img = internalimaging.Enhance(img)
	}

	result, err := s.decoder.Decode(img)
	if err != nil {
		return nil, err
	}
	return &SolveResult{
		Text:       result.Text,
		Confidence: result.Confidence,
		Engine:     result.Engine,
	}, nil
}

type locateArgs struct {
	Path string `json:"path"`
	Pad  *int   `json:"pad"`
}

// LocateResult is the response payload of captcha_locate.
type LocateResult struct {
	X1     int `json:"x1"`
	Y1     int `json:"y1"`
	X2     int `json:"x2"`
	Y2     int `json:"y2"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleLocate(args json.RawMessage) (interface{}, error) {
	var a locateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	pad := 4
	if a.Pad != nil {
		pad = *a.Pad
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	_, rect, err := internalimaging.TrimToInk(img, pad)
	if err != nil {
		return nil, err
	}
	return &LocateResult{
		X1:     rect.Min.X,
		Y1:     rect.Min.Y,
		X2:     rect.Max.X,
		Y2:     rect.Max.Y,
		Width:  rect.Dx(),
		Height: rect.Dy(),
	}, nil
}

// EngineInfoResult is the response payload of captcha_engine_info.
type EngineInfoResult struct {
	Engine string `json:"engine"`
}

func (s *Server) handleEngineInfo(json.RawMessage) (interface{}, error) {
	return &EngineInfoResult{Engine: s.decoder.EngineName()}, nil
}
