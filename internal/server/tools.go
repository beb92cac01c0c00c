package server

// Tool is an MCP tool definition.
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolDefinitions returns the solver's tool set.
func ToolDefinitions() []Tool {
	pathProp := map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the CAPTCHA image file",
	}
	enhanceProp := map[string]interface{}{
		"type":        "boolean",
		"description": "Apply the contrast/sharpen cleanup chain before decoding. Default false",
		"default":     false,
	}
	colorProp := map[string]interface{}{
		"type":        "string",
		"description": "Keep only ink of this color before decoding (black, white, red, orange, yellow, green, cyan, blue, purple). Empty keeps all colors",
	}

	return []Tool{
		{
			Name:        "captcha_solve",
			Description: "Decode the text in a CAPTCHA image file and return it with a confidence score.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":    pathProp,
					"enhance": enhanceProp,
					"color":   colorProp,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "captcha_solve_region",
			Description: "Decode the text inside a rectangular region of an image. Useful when the CAPTCHA sits inside a larger screenshot.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
					"x1": map[string]interface{}{
						"type":        "integer",
						"description": "Left edge X coordinate (0-based)",
					},
					"y1": map[string]interface{}{
						"type":        "integer",
						"description": "Top edge Y coordinate (0-based)",
					},
					"x2": map[string]interface{}{
						"type":        "integer",
						"description": "Right edge X coordinate (exclusive)",
					},
					"y2": map[string]interface{}{
						"type":        "integer",
						"description": "Bottom edge Y coordinate (exclusive)",
					},
					"enhance": enhanceProp,
					"color":   colorProp,
				},
				"required": []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "captcha_locate",
			Description: "Find the bounding box of the text band inside a larger image without decoding it. Feed the box to captcha_solve_region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProp,
					"pad": map[string]interface{}{
						"type":        "integer",
						"description": "Padding in pixels around the detected box. Default 4",
						"default":     4,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "captcha_engine_info",
			Description: "Report which recognition engine is loaded.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}
