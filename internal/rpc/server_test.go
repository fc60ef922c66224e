package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newTestServer(input string) (*Server, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewServer(APIVersion, strings.NewReader(input), out, nil), out
}

func serveAndDecode(t *testing.T, server *Server, out *bytes.Buffer) []Response {
	t.Helper()
	if err := server.Serve(context.Background()); err != nil {
		t.Fatalf("serve: %v", err)
	}
	var responses []Response
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp Response
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("decode response %q: %v", line, err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestServeDispatchesToHandler(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"Echo","params":{"text":"hello"}}` + "\n"
	server, out := newTestServer(input)
	server.Register("Echo", func(ctx context.Context, params json.RawMessage) (any, *Error) {
		var p struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, &Error{Message: "bad params"}
		}
		return map[string]string{"echo": p.Text}, nil
	})
	responses := serveAndDecode(t, server, out)
	if len(responses) != 1 {
		t.Fatalf("responses = %d", len(responses))
	}
	if responses[0].Error != nil {
		t.Fatalf("unexpected error: %+v", responses[0].Error)
	}
	result, ok := responses[0].Result.(map[string]any)
	if !ok || result["echo"] != "hello" {
		t.Fatalf("result = %+v", responses[0].Result)
	}
}

func TestServeRejectsUnknownMethod(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":2,"method":"Nope"}` + "\n"
	server, out := newTestServer(input)
	responses := serveAndDecode(t, server, out)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("responses = %+v", responses)
	}
	if !strings.Contains(responses[0].Error.Message, "method not found") {
		t.Fatalf("error = %q", responses[0].Error.Message)
	}
}

func TestServeRejectsBadVersion(t *testing.T) {
	input := `{"jsonrpc":"1.0","id":3,"method":"Echo"}` + "\n"
	server, out := newTestServer(input)
	responses := serveAndDecode(t, server, out)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("responses = %+v", responses)
	}
}

func TestServeRejectsIncompatibleAPIVersion(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":4,"method":"Echo","api_version":"99"}` + "\n"
	server, out := newTestServer(input)
	server.Register("Echo", func(ctx context.Context, params json.RawMessage) (any, *Error) {
		return "ok", nil
	})
	responses := serveAndDecode(t, server, out)
	if len(responses) != 1 || responses[0].Error == nil {
		t.Fatalf("responses = %+v", responses)
	}
	if !strings.Contains(responses[0].Error.Message, "api_version") {
		t.Fatalf("error = %q", responses[0].Error.Message)
	}
}

func TestServeSkipsResponseForNotification(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"Echo"}` + "\n"
	server, out := newTestServer(input)
	called := false
	server.Register("Echo", func(ctx context.Context, params json.RawMessage) (any, *Error) {
		called = true
		return "ok", nil
	})
	responses := serveAndDecode(t, server, out)
	if !called {
		t.Fatalf("handler not called for notification")
	}
	if len(responses) != 0 {
		t.Fatalf("responses = %+v", responses)
	}
}
