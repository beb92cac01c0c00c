package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"image"
	"strings"
	"testing"

	"github.com/parsolve/parsolve/internal/decode"
)

// fakeEngine answers every recognition with a fixed string, standing in
// for a loaded model.
type fakeEngine struct {
	text string
}

func (f *fakeEngine) Recognize(image.Image) (*decode.Result, error) {
	return &decode.Result{Text: f.text, Confidence: 0.9, Engine: "fake"}, nil
}

func (f *fakeEngine) Name() string { return "fake" }
func (f *fakeEngine) Close() error { return nil }

func newTestServer() *Server {
	return New(decode.NewDecoder(&fakeEngine{text: "x7Kp"}))
}

func TestNew(t *testing.T) {
	s := newTestServer()
	if s == nil {
		t.Fatal("New returned nil")
	}
	if s.cache == nil {
		t.Fatal("New did not initialize the image cache")
	}
	if s.decoder == nil {
		t.Fatal("New did not keep the decoder")
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer()

	resp := s.handleRequest(&Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	if resp == nil {
		t.Fatal("initialize returned nil response")
	}
	if resp.Error != nil {
		t.Fatalf("initialize returned error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type: got %T, want map", resp.Result)
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info, ok := result["serverInfo"].(map[string]interface{})
	if !ok || info["name"] != "parsolve" {
		t.Errorf("serverInfo: got %v", result["serverInfo"])
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer()

	resp := s.handleRequest(&Request{JSONRPC: "2.0", ID: "p1", Method: "ping"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("ping failed: %+v", resp)
	}
	if resp.ID != "p1" {
		t.Errorf("ID: got %v, want p1", resp.ID)
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer()

	resp := s.handleRequest(&Request{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("tools/list failed: %+v", resp)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type: got %T, want map", resp.Result)
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatalf("tools type: got %T, want []Tool", result["tools"])
	}
	if len(tools) != 4 {
		t.Errorf("tool count: got %d, want 4", len(tools))
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer()

	resp := s.handleRequest(&Request{JSONRPC: "2.0", Method: "notifications/initialized"})
	if resp != nil {
		t.Errorf("notification should produce no response, got %+v", resp)
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer()

	resp := s.handleRequest(&Request{JSONRPC: "2.0", ID: 3, Method: "bogus/method"})
	if resp == nil || resp.Error == nil {
		t.Fatal("unknown method should return an error response")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	s := newTestServer()

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := s.Run(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	scanner := bufio.NewScanner(&out)
	var responses []Response
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response line: %v", err)
		}
		responses = append(responses, resp)
	}
	if len(responses) != 3 {
		t.Fatalf("responses: got %d, want 3", len(responses))
	}
	for i, resp := range responses {
		if resp.JSONRPC != "2.0" {
			t.Errorf("response %d: jsonrpc %q", i, resp.JSONRPC)
		}
		if resp.Error != nil {
			t.Errorf("response %d: unexpected error %+v", i, resp.Error)
		}
	}
}

func TestRun_SkipsMalformedLines(t *testing.T) {
	s := newTestServer()

	input := "this is not json\n" +
		`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"

	var out bytes.Buffer
	if err := s.Run(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), `"id":1`) {
		t.Error("valid request after malformed line should still be answered")
	}
}
