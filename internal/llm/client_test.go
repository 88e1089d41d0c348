package llm

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClientWithoutKey(t *testing.T) {
	c := NewClient("", Options{})
	if c != nil {
		t.Errorf("NewClient with empty key = %v, want nil", c)
	}
	if c.Enabled() {
		t.Error("nil client reports Enabled")
	}
}

func TestCompleteUsesConfiguredModelAndEndpoint(t *testing.T) {
	var got apiRequest
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("request body: %v", err)
		}
		w.Write([]byte(`{"content":[{"text":"the motion carries"}],"usage":{"input_tokens":10,"output_tokens":5}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", Options{
		Model:   "claude-test-model",
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	})
	text, err := c.Complete(Request{System: "you are a governor", Prompt: "vote", MaxTokens: 64})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "the motion carries" {
		t.Errorf("text = %q, want %q", text, "the motion carries")
	}
	if got.Model != "claude-test-model" {
		t.Errorf("model = %q, want claude-test-model", got.Model)
	}
	if got.System != "you are a governor" || got.MaxTokens != 64 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("messages = %+v, want single user turn", got.Messages)
	}
	if gotKey != "test-key" || gotVersion != apiVersion {
		t.Errorf("headers = key %q version %q", gotKey, gotVersion)
	}
}

func TestCompleteForceJSONPrefillsBrace(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		w.Write([]byte(`{"content":[{"text":"\"vote\": \"YES\"}"}],"usage":{}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", Options{BaseURL: srv.URL})
	text, err := c.Complete(Request{Prompt: "vote", MaxTokens: 64, ForceJSON: true})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(got.Messages) != 2 || got.Messages[1].Role != "assistant" || got.Messages[1].Content != "{" {
		t.Errorf("messages = %+v, want trailing assistant { prefill", got.Messages)
	}
	if text != `{"vote": "YES"}` {
		t.Errorf("text = %q, want prefilled brace restored", text)
	}
	var ballot map[string]string
	if err := json.Unmarshal([]byte(text), &ballot); err != nil {
		t.Errorf("returned text is not valid JSON: %v", err)
	}
}

func TestCompleteRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"text":"ok"}],"usage":{}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", Options{BaseURL: srv.URL, MaxCallsPerMinute: 2})
	for i := 0; i < 2; i++ {
		if _, err := c.Complete(Request{Prompt: "go", MaxTokens: 8}); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if _, err := c.Complete(Request{Prompt: "go", MaxTokens: 8}); err == nil {
		t.Error("third call within the window succeeded, want rate limit error")
	}
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("test-key", Options{BaseURL: srv.URL})
	if _, err := c.Complete(Request{Prompt: "go", MaxTokens: 8}); err == nil {
		t.Error("non-200 response returned no error")
	}
}
