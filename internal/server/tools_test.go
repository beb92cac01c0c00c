package server

import (
	"encoding/json"
	"testing"
)

func TestToolDefinitions(t *testing.T) {
	tools := ToolDefinitions()
	if len(tools) != 4 {
		t.Fatalf("tool count: got %d, want 4", len(tools))
	}

	want := map[string]bool{
		"captcha_solve":        false,
		"captcha_solve_region": false,
		"captcha_locate":       false,
		"captcha_engine_info":  false,
	}
	for _, tool := range tools {
		if _, ok := want[tool.Name]; !ok {
			t.Errorf("unexpected tool %q", tool.Name)
			continue
		}
		want[tool.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("missing tool %q", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range ToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("tool has no description")
			}
			if tool.InputSchema == nil {
				t.Fatal("tool has no input schema")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("schema type: got %v, want object", tool.InputSchema["type"])
			}
			if _, err := json.Marshal(tool); err != nil {
				t.Errorf("tool definition not marshalable: %v", err)
			}
		})
	}
}

func TestToolDefinitions_RequiredFields(t *testing.T) {
	required := map[string][]string{
		"captcha_solve":        {"path"},
		"captcha_solve_region": {"path", "x1", "y1", "x2", "y2"},
		"captcha_locate":       {"path"},
	}

	for _, tool := range ToolDefinitions() {
		want, ok := required[tool.Name]
		if !ok {
			continue
		}
		got, ok := tool.InputSchema["required"].([]string)
		if !ok {
			t.Errorf("%s: missing required list", tool.Name)
			continue
		}
		if len(got) != len(want) {
			t.Errorf("%s: required fields %v, want %v", tool.Name, got, want)
		}
	}
}
