package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func newTestOllama(url string) *OllamaClient {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	return NewOllamaClient(url, "test-model", 0.7, 256, tracer)
}

func TestOllamaGenerate(t *testing.T) {
	var gotReq ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "  the answer  "})
	}))
	defer srv.Close()

	out, err := newTestOllama(srv.URL).Generate(context.Background(), "be brief", "what now")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "the answer" {
		t.Errorf("out = %q", out)
	}
	if gotReq.Model != "test-model" || gotReq.Stream {
		t.Errorf("request = %+v", gotReq)
	}
	if gotReq.System != "be brief" || gotReq.Prompt != "what now" {
		t.Errorf("prompts = %q / %q", gotReq.System, gotReq.Prompt)
	}
	if gotReq.Options.Temperature != 0.7 || gotReq.Options.NumPredict != 256 {
		t.Errorf("options = %+v", gotReq.Options)
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := newTestOllama(srv.URL).Generate(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestOllamaGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Error: "out of memory"})
	}))
	defer srv.Close()

	if _, err := newTestOllama(srv.URL).Generate(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected error from error field")
	}
}

func TestOllamaAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if !newTestOllama(srv.URL).Available(context.Background()) {
		t.Error("expected available")
	}

	srv.Close()
	if newTestOllama(srv.URL).Available(context.Background()) {
		t.Error("expected unavailable after server shutdown")
	}
}

func TestStripReasoning(t *testing.T) {
	cases := []struct{ in, want string }{
		{"<think>hmm\nmore</think>\nBUY now", "BUY now"},
		{"no tags here", "no tags here"},
		{"<think>a</think>first<think>b</think> second", "first second"},
	}
	for _, tc := range cases {
		if got := StripReasoning(tc.in); got != tc.want {
			t.Errorf("StripReasoning(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
