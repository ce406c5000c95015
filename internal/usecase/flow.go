package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"agrichain/internal/domain"
	"agrichain/internal/jsonutil"
	"agrichain/internal/logging"
)

// Generator sends a rendered prompt to a model and returns its raw reply,
// which should be a JSON document matching Prompt.Schema.
type Generator interface {
	GenerateJSON(ctx context.Context, p domain.Prompt) (string, error)
}

// Synthesizer turns text into speech. The returned media holds raw PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (domain.Media, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ErrMissingCredential is returned by Unconfigured for every call.
var ErrMissingCredential = errors.New("usecase: model provider API key is not configured")

// Unconfigured stands in for a provider when no API key could be resolved.
type Unconfigured struct{}

func (Unconfigured) GenerateJSON(context.Context, domain.Prompt) (string, error) {
	return "", ErrMissingCredential
}

func (Unconfigured) Synthesize(context.Context, string) (domain.Media, error) {
	return domain.Media{}, ErrMissingCredential
}

var errMalformedReply = errors.New("malformed model reply")

// flow binds a named prompt to the schema its reply must satisfy.
type flow[T any] struct {
	name   string
	raw    []byte
	schema *jsonschema.Schema
}

func newFlow[T any](name, schema string) flow[T] {
	return flow[T]{
		name:   name,
		raw:    []byte(schema),
		schema: mustCompileSchema(name, schema),
	}
}

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://agrichain.local/schemas/%s.json", name)
	if err := c.AddResource(url, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("usecase: load schema %s: %v", name, err))
	}
	compiled, err := c.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("usecase: compile schema %s: %v", name, err))
	}
	return compiled
}

func (f flow[T]) prompt(text string, media ...domain.Media) domain.Prompt {
	return domain.Prompt{Name: f.name, Text: text, Media: media, Schema: f.raw}
}

// run makes exactly one generator call and parses the reply.
func (f flow[T]) run(ctx context.Context, gen Generator, logger *slog.Logger, p domain.Prompt) (T, error) {
	var zero T
	provider := providerName(gen)
	logging.LLMRequest(logger, provider, f.name, p.Text, len(p.Media))
	raw, err := gen.GenerateJSON(ctx, p)
	logging.LLMResponse(logger, provider, f.name, raw, err)
	if err != nil {
		return zero, err
	}
	return f.parse(raw)
}

// parse extracts the JSON document from raw, checks it against the flow
// schema, and decodes it strictly into T.
func (f flow[T]) parse(raw string) (T, error) {
	var zero T
	body, ok := jsonutil.ExtractJSON(raw)
	if !ok {
		return zero, fmt.Errorf("usecase: %s: %w: no JSON found", f.name, errMalformedReply)
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return zero, fmt.Errorf("usecase: %s: %w: %v", f.name, errMalformedReply, err)
	}
	if err := f.schema.Validate(doc); err != nil {
		return zero, fmt.Errorf("usecase: %s: %w: schema: %v", f.name, errMalformedReply, err)
	}

	out, err := decodeStrict[T](body)
	if err != nil {
		return zero, fmt.Errorf("usecase: %s: %w: %v", f.name, errMalformedReply, err)
	}
	return out, nil
}

func decodeStrict[T any](body string) (T, error) {
	var out T
	dec := json.NewDecoder(bytes.NewBufferString(strings.TrimSpace(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode reply: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var zero T
		if err == nil {
			return zero, errors.New("decode reply: multiple JSON values")
		}
		return zero, fmt.Errorf("decode reply trailing data: %w", err)
	}
	return out, nil
}

func providerName(gen Generator) string {
	if n, ok := gen.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", gen)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
