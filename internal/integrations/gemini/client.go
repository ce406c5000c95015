package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"agrichain/internal/domain"
)

const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultTTSModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice    = "Algenib"
)

// modelsAPI is the slice of the genai Models service used by Client.
// *genai.Models satisfies this interface.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// StatusError carries the HTTP status of a failed Gemini API call.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client generates structured JSON and speech with Gemini models.
type Client struct {
	models   modelsAPI
	model    string
	ttsModel string
	voice    string
	logger   *slog.Logger
}

type Option func(*Client)

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

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(models modelsAPI, opts ...Option) (*Client, error) {
	if models == nil {
		return nil, errors.New("gemini: models api must not be nil")
	}
	c := &Client{
		models:   models,
		model:    DefaultModel,
		ttsModel: DefaultTTSModel,
		voice:    DefaultVoice,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dial builds a Client on the Gemini Developer API.
func Dial(ctx context.Context, apiKey string, httpClient *http.Client, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key must not be empty")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return New(gc.Models, opts...)
}

func (c *Client) Name() string {
	return "gemini:" + c.model
}

// GenerateJSON asks the text model for a JSON reply constrained by p.Schema.
func (c *Client) GenerateJSON(ctx context.Context, p domain.Prompt) (string, error) {
	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if len(p.Schema) > 0 {
		var schema map[string]any
		if err := json.Unmarshal(p.Schema, &schema); err != nil {
			return "", fmt.Errorf("gemini: decode schema for %s: %w", p.Name, err)
		}
		cfg.ResponseJsonSchema = schema
	}

	parts := []*genai.Part{genai.NewPartFromText(p.Text)}
	for _, m := range p.Media {
		parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", wrapError("generate "+p.Name, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini: no candidates in response")
	}
	return resp.Text(), nil
}

// Synthesize reads text aloud with the configured prebuilt voice. The reply
// is raw PCM; its MIME type usually carries the sample rate.
func (c *Client) Synthesize(ctx context.Context, text string) (domain.Media, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.voice},
			},
		},
	}
	resp, err := c.models.GenerateContent(ctx, c.ttsModel, genai.Text(text), cfg)
	if err != nil {
		return domain.Media{}, wrapError("synthesize", err)
	}
	if resp == nil {
		return domain.Media{}, errors.New("gemini: empty speech response")
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				c.logger.DebugContext(ctx, "speech synthesized",
					"voice", c.voice,
					"mime", part.InlineData.MIMEType,
					"bytes", len(part.InlineData.Data),
				)
				return domain.Media{MIMEType: part.InlineData.MIMEType, Data: part.InlineData.Data}, nil
			}
		}
	}
	return domain.Media{}, errors.New("gemini: no audio in speech response")
}

func wrapError(op string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini: %s: %w", op, &StatusError{
			StatusCode: apiErr.Code,
			Status:     apiErr.Status,
			Message:    apiErr.Message,
		})
	}
	return fmt.Errorf("gemini: %s: %w", op, err)
}
