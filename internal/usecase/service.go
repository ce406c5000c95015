package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"agrichain/internal/audio"
)

const defaultLanguage = "Tamil"

// Service runs the AI-assisted actions. Every method validates its input,
// makes at most one model call per step, and reports failures through the
// returned Result rather than a Go error.
type Service struct {
	gen      Generator
	speech   Synthesizer
	logger   *slog.Logger
	language string
	format   audio.Format
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLanguage sets the spoken language of voice replies.
func WithLanguage(language string) Option {
	return func(s *Service) {
		if language = strings.TrimSpace(language); language != "" {
			s.language = language
		}
	}
}

// WithAudioFormat sets the PCM layout assumed for synthesized speech.
func WithAudioFormat(f audio.Format) Option {
	return func(s *Service) {
		s.format = f
	}
}

func NewService(gen Generator, speech Synthesizer, opts ...Option) (*Service, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if speech == nil {
		return nil, errors.New("usecase: synthesizer must not be nil")
	}
	s := &Service{
		gen:      gen,
		speech:   speech,
		logger:   slog.Default(),
		language: defaultLanguage,
		format:   audio.DefaultFormat,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.format.Validate(); err != nil {
		return nil, fmt.Errorf("usecase: %w", err)
	}
	return s, nil
}

// perform is the action boundary: validate, then invoke inside a recover.
func perform[In, Out any](ctx context.Context, s *Service, action, failure string, in In, call func(context.Context, In) (Out, error)) (res Result[Out]) {
	if err := validateInput(in); err != nil {
		uerr := invalidInput(err)
		s.logger.InfoContext(ctx, "action rejected", "action", action, "code", uerr.Code, "reason", uerr.Reason, "err", err)
		return fail[Out](uerr)
	}

	defer func() {
		if r := recover(); r != nil {
			uerr := upstreamFailure(failure, "panic", fmt.Errorf("usecase: %s panicked: %v", action, r))
			s.logger.ErrorContext(ctx, "action failed", "action", action, "code", uerr.Code, "reason", uerr.Reason, "err", uerr.Err)
			res = fail[Out](uerr)
		}
	}()

	out, err := call(ctx, in)
	if err != nil {
		uerr := classifyUpstream(failure, err)
		s.logger.ErrorContext(ctx, "action failed", "action", action, "code", uerr.Code, "reason", uerr.Reason, "err", err)
		return fail[Out](uerr)
	}
	return succeed(out)
}

func invalidInput(err error) *Error {
	uerr := newError(ErrorInvalidInput, "validation_failed", err)
	var v Violations
	if errors.As(err, &v) {
		uerr.Message = "Invalid input: " + v.Messages()
	} else {
		uerr.Message = "Invalid input."
	}
	return uerr
}

func classifyUpstream(failure string, err error) *Error {
	if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
		uerr := upstreamFailure(failure, "model_rate_limited", err)
		uerr.Code = ErrorRateLimited
		return uerr
	}
	switch {
	case errors.Is(err, errMalformedReply):
		return upstreamFailure(failure, "model_malformed_response", err)
	case errors.Is(err, ErrMissingCredential):
		return upstreamFailure(failure, "model_unconfigured", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return upstreamFailure(failure, "model_timeout", err)
	}
	return upstreamFailure(failure, "model_error", err)
}

func upstreamFailure(failure, reason string, err error) *Error {
	uerr := newError(ErrorUpstream, reason, err)
	uerr.Message = strings.TrimSuffix(failure, ".") + ": " + err.Error()
	return uerr
}
