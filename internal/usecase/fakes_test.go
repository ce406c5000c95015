package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"agrichain/internal/domain"
)

type stubGenerator struct {
	reply     string
	err       error
	panicWith any
	calls     int
	prompts   []domain.Prompt
}

func (s *stubGenerator) GenerateJSON(_ context.Context, p domain.Prompt) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, p)
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.reply, s.err
}

type stubSynthesizer struct {
	media domain.Media
	err   error
	calls int
	texts []string
}

func (s *stubSynthesizer) Synthesize(_ context.Context, text string) (domain.Media, error) {
	s.calls++
	s.texts = append(s.texts, text)
	return s.media, s.err
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider: unexpected status %d", e.code)
}

func (e *statusError) HTTPStatusCode() int {
	return e.code
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, gen Generator, speech Synthesizer, opts ...Option) *Service {
	t.Helper()
	if speech == nil {
		speech = &stubSynthesizer{}
	}
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s, err := NewService(gen, speech, opts...)
	require.NoError(t, err)
	return s
}
