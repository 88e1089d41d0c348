// Package llm provides the Anthropic Messages API client behind the
// LLM-backed governor advisors. Every call the advisors make expects a
// single JSON object back, so the client can prefill the reply to pin the
// model to JSON output.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1/messages"
	defaultModel   = "claude-haiku-4-5-20251001"
	apiVersion     = "2023-06-01"
)

// Options carries the tunables the config layer resolves for the client.
// Zero values fall back to the defaults above.
type Options struct {
	Model             string
	BaseURL           string
	Timeout           time.Duration
	MaxCallsPerMinute int
}

// Client wraps the Messages API for governor-advisor calls.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	// Rate limiting: max calls per minute.
	mu        sync.Mutex
	callCount int
	resetAt   time.Time
	maxPerMin int
}

// NewClient creates an API client. Returns nil if apiKey is empty
// (LLM features disabled).
func NewClient(apiKey string, opts Options) *Client {
	if apiKey == "" {
		return nil
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxCallsPerMinute <= 0 {
		opts.MaxCallsPerMinute = 20
	}
	return &Client{
		apiKey:  apiKey,
		model:   opts.Model,
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxPerMin: opts.MaxCallsPerMinute,
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Request is one advisory call. ForceJSON prefills the reply with an opening
// brace so the model continues a JSON object instead of prose.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
	ForceJSON bool
}

// message is a chat turn on the wire.
type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiRequest is the Messages API request body.
type apiRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

// apiResponse is the Messages API response body.
type apiResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends one advisory request and returns the response text. When
// the request forces JSON, the returned text includes the prefilled opening
// brace.
func (c *Client) Complete(req Request) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("LLM client not configured")
	}

	// Rate limiting.
	c.mu.Lock()
	now := time.Now()
	if now.After(c.resetAt) {
		c.callCount = 0
		c.resetAt = now.Add(time.Minute)
	}
	if c.callCount >= c.maxPerMin {
		c.mu.Unlock()
		return "", fmt.Errorf("rate limit exceeded (%d calls/min)", c.maxPerMin)
	}
	c.callCount++
	c.mu.Unlock()

	messages := []message{{Role: "user", Content: req.Prompt}}
	if req.ForceJSON {
		messages = append(messages, message{Role: "assistant", Content: "{"})
	}
	body, err := json.Marshal(apiRequest{
		Model:     c.model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	slog.Debug("advisor model call",
		"model", c.model,
		"input_tokens", apiResp.Usage.InputTokens,
		"output_tokens", apiResp.Usage.OutputTokens,
	)

	text := apiResp.Content[0].Text
	if req.ForceJSON {
		// The model continued our prefilled opening brace.
		text = "{" + text
	}
	return text, nil
}
