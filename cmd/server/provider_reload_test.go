package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talkbase/answerd/internal/config"
	"github.com/talkbase/answerd/internal/provider"
)

func embeddingBackend(t *testing.T, hits *int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.5,0.5]}]}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func providerConfig(baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
	}
}

func TestProviderReloaderSwapsClient(t *testing.T) {
	var oldHits, newHits int
	oldBackend := embeddingBackend(t, &oldHits)
	newBackend := embeddingBackend(t, &newHits)

	swapper := provider.NewSwapper(newProviderClient(providerConfig(oldBackend.URL)))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if _, err := swapper.Embed(context.Background(), "before reload"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if oldHits != 1 {
		t.Fatalf("old backend hits = %d, want 1", oldHits)
	}

	reloader := newProviderReloader(logger, swapper)
	reloader.Reload(&config.Config{Provider: providerConfig(newBackend.URL)})

	if _, err := swapper.Embed(context.Background(), "after reload"); err != nil {
		t.Fatalf("Embed() after reload error = %v", err)
	}
	if newHits != 1 {
		t.Errorf("new backend hits = %d, want 1", newHits)
	}
	if oldHits != 1 {
		t.Errorf("old backend hits after reload = %d, want 1", oldHits)
	}
}
