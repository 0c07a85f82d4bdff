package main

import (
	"log/slog"
	"sync/atomic"

	"github.com/talkbase/answerd/internal/config"
	"github.com/talkbase/answerd/internal/provider"
)

// providerReloader rebuilds the provider client from a reloaded config and
// swaps it into the running handler, so a rotated API key or changed model
// takes effect without a restart.
type providerReloader struct {
	logger     *slog.Logger
	swapper    *provider.Swapper
	inProgress atomic.Bool
}

func newProviderReloader(logger *slog.Logger, swapper *provider.Swapper) *providerReloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &providerReloader{logger: logger, swapper: swapper}
}

// Reload is registered as a config.Manager OnChange listener.
func (r *providerReloader) Reload(cfg *config.Config) {
	if !r.inProgress.CompareAndSwap(false, true) {
		r.logger.Warn("provider reload already in progress")
		return
	}
	defer r.inProgress.Store(false)

	r.swapper.Swap(newProviderClient(cfg.Provider))

	r.logger.Info("provider client reloaded",
		"base_url", cfg.Provider.BaseURL,
		"embedding_model", cfg.Provider.EmbeddingModel,
		"chat_model", cfg.Provider.ChatModel,
	)
}

func newProviderClient(cfg config.ProviderConfig) *provider.OpenAIClient {
	return provider.NewOpenAIClient(provider.OpenAIConfig{
		BaseURL:        cfg.BaseURL,
		APIKey:         cfg.APIKey,
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
		Timeout:        cfg.Timeout,
	})
}
