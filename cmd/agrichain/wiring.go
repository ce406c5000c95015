package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"agrichain/handler"
	"agrichain/internal/config"
	"agrichain/internal/integrations/gemini"
	"agrichain/internal/integrations/openai"
	"agrichain/internal/integrations/paramstore"
	"agrichain/internal/repository"
	"agrichain/internal/usecase"
)

// ledgerStore is what every store driver provides.
type ledgerStore interface {
	usecase.BatchStore
	usecase.ProductStore
	repository.Writer
}

// resolveAPIKey prefers the configured key and falls back to Parameter Store.
// A missing key is not fatal: the service starts and model calls fail.
func resolveAPIKey(ctx context.Context, cfg *config.Config, logger *slog.Logger) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	if cfg.ParamPrefix == "" {
		logger.Warn("no model api key configured; model calls will fail")
		return ""
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Warn("failed to load AWS config for api key lookup", "err", err)
		return ""
	}
	ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		logger.Warn("failed to create SSM client", "err", err)
		return ""
	}
	key, err := paramstore.LoadAPIKey(ctx, ps, cfg.ParamPrefix)
	if err != nil {
		logger.Warn("failed to load model api key from parameter store",
			"parameter", paramstore.TokenParameterName(cfg.ParamPrefix),
			"err", err,
		)
		return ""
	}
	return key
}

// newProviders returns the text and speech backends for the configured
// provider, or usecase.Unconfigured when apiKey is empty.
func newProviders(ctx context.Context, cfg *config.Config, apiKey string, logger *slog.Logger) (usecase.Generator, usecase.Synthesizer, error) {
	if apiKey == "" {
		return usecase.Unconfigured{}, usecase.Unconfigured{}, nil
	}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	switch cfg.Provider {
	case "gemini":
		c, err := gemini.Dial(ctx, apiKey, httpClient,
			gemini.WithModel(cfg.Model),
			gemini.WithTTSModel(cfg.TTSModel),
			gemini.WithVoice(cfg.Voice),
			gemini.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case "openai":
		opts := []openai.Option{
			openai.WithHTTPClient(httpClient),
			openai.WithModel(cfg.Model),
			openai.WithTTSModel(cfg.TTSModel),
			openai.WithVoice(cfg.Voice),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		c, err := openai.NewClient(apiKey, opts...)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	}
	return nil, nil, fmt.Errorf("agrichain: unknown provider %q", cfg.Provider)
}

// openStore opens the configured ledger store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (ledgerStore, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case "memory":
		return repository.NewSeededMemoryStore(), noop, nil
	case "sqlite":
		s, err := repository.NewSQLiteStore(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("agrichain: load AWS config: %w", err)
		}
		c, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.Store.Table)
		if err != nil {
			return nil, nil, err
		}
		return c, noop, nil
	}
	return nil, nil, fmt.Errorf("agrichain: unknown store driver %q", cfg.Store.Driver)
}

// buildHandler wires providers, store and services into a handler.
func buildHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*handler.Handler, func(), error) {
	if cfg == nil {
		return nil, nil, errors.New("agrichain: config must not be nil")
	}
	gen, speech, err := newProviders(ctx, cfg, resolveAPIKey(ctx, cfg, logger), logger)
	if err != nil {
		return nil, nil, err
	}

	svc, err := usecase.NewService(gen, speech,
		usecase.WithLogger(logger),
		usecase.WithLanguage(cfg.Language),
		usecase.WithAudioFormat(cfg.Audio.Format()),
	)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := usecase.NewLedgerService(store, store, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	h, err := handler.NewHandler(svc, ledger, handler.WithLogger(logger))
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return h, closeStore, nil
}
