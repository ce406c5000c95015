package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agrichain/internal/domain"
)

const (
	DefaultModel    = "gpt-4o-mini"
	DefaultTTSModel = "gpt-4o-mini-tts"
	DefaultVoice    = "alloy"

	// speechSampleRate is fixed by the API for response_format=pcm.
	speechSampleRate = 24000
)

// chatMessage is the request message shape. Content is either a string or
// a slice of contentPart when images are attached.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// chatRequest is the minimal request shape for the Chat Completions endpoint.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaConfig `json:"json_schema,omitempty"`
}

type jsonSchemaConfig struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// chatResponse is the minimal response shape returned by the Chat Completions endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a focused OpenAI-compatible client for JSON chat completions and
// speech synthesis.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	model      string
	ttsModel   string
	voice      string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.model = m
		}
	}
}

func WithTTSModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.ttsModel = m
		}
	}
}

func WithVoice(voice string) Option {
	return func(c *Client) {
		if v := strings.TrimSpace(voice); v != "" {
			c.voice = v
		}
	}
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai: api key must not be empty")
	}
	c := &Client{
		baseURL:    "https://api.openai.com/v1",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      DefaultModel,
		ttsModel:   DefaultTTSModel,
		voice:      DefaultVoice,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Name() string {
	return "openai:" + c.model
}

// httpClient returns the configured HTTP client, or a default with a 60s timeout
// if none was set (e.g. in tests that nil out the field).
func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func endpointURL(baseURL, path string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if strings.HasSuffix(base, "/v1") {
		return base + path
	}
	return base + "/v1" + path
}

func chatURL(baseURL string) string {
	return endpointURL(baseURL, "/chat/completions")
}

func speechURL(baseURL string) string {
	return endpointURL(baseURL, "/audio/speech")
}

// GenerateJSON sends the prompt as a single user message and asks for a
// reply matching p.Schema.
func (c *Client) GenerateJSON(ctx context.Context, p domain.Prompt) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{userMessage(p)},
		ResponseFormat: flowResponseFormat(p),
	})
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	url := chatURL(c.baseURL)
	req, err := c.newRequest(ctx, url, body)
	if err != nil {
		return "", err
	}

	raw, err := c.doRequest(req, url, 1<<20)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}

	var payload chatResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return "", fmt.Errorf("openai: decode response: %w", decErr)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return payload.Choices[0].Message.Content, nil
}

func userMessage(p domain.Prompt) chatMessage {
	if len(p.Media) == 0 {
		return chatMessage{Role: "user", Content: p.Text}
	}
	parts := make([]contentPart, 0, len(p.Media)+1)
	parts = append(parts, contentPart{Type: "text", Text: p.Text})
	for _, m := range p.Media {
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: m.DataURI()}})
	}
	return chatMessage{Role: "user", Content: parts}
}

// flowResponseFormat requests schema-guided output. Strict mode is off since
// the flow schemas carry optional properties.
func flowResponseFormat(p domain.Prompt) *responseFormat {
	if len(p.Schema) == 0 {
		return &responseFormat{Type: "json_object"}
	}
	name := p.Name
	if name == "" {
		name = "reply"
	}
	return &responseFormat{
		Type: "json_schema",
		JSONSchema: &jsonSchemaConfig{
			Name:   name,
			Strict: false,
			Schema: json.RawMessage(p.Schema),
		},
	}
}

// Synthesize returns raw 16-bit mono PCM at 24kHz.
func (c *Client) Synthesize(ctx context.Context, text string) (domain.Media, error) {
	body, err := json.Marshal(speechRequest{
		Model:          c.ttsModel,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: "pcm",
	})
	if err != nil {
		return domain.Media{}, fmt.Errorf("openai: marshal speech request: %w", err)
	}

	url := speechURL(c.baseURL)
	req, err := c.newRequest(ctx, url, body)
	if err != nil {
		return domain.Media{}, err
	}

	raw, err := c.doRequest(req, url, 32<<20)
	if err != nil {
		return domain.Media{}, fmt.Errorf("openai: speech request failed: %w", err)
	}
	if len(raw) == 0 {
		return domain.Media{}, errors.New("openai: empty speech response")
	}
	return domain.Media{
		MIMEType: fmt.Sprintf("audio/pcm;rate=%d", speechSampleRate),
		Data:     raw,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return req, nil
}

func (c *Client) doRequest(req *http.Request, url string, limit int64) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
