// Package provider implements the client for the external embedding and
// text-generation provider. One request, one attempt: failures propagate
// immediately with the provider's error payload attached for diagnostics.
package provider

import "context"

// Embedder computes a vector embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a completion for a system/user prompt pair.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client is the combined provider surface the gateways depend on.
type Client interface {
	Embedder
	Generator
}
