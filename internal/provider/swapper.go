package provider

import (
	"context"
	"sync/atomic"
)

// Swapper is a Client whose underlying client can be replaced at runtime,
// so a config reload (rotated API key, new base URL or model) takes effect
// without restarting the server. A request in flight keeps the client it
// started with.
type Swapper struct {
	current atomic.Pointer[clientBox]
}

// clientBox exists because atomic.Pointer needs a concrete type.
type clientBox struct {
	client Client
}

// NewSwapper creates a Swapper delegating to the given client.
func NewSwapper(client Client) *Swapper {
	s := &Swapper{}
	s.current.Store(&clientBox{client: client})
	return s
}

// Swap replaces the underlying client. A nil client is ignored.
func (s *Swapper) Swap(client Client) {
	if client == nil {
		return
	}
	s.current.Store(&clientBox{client: client})
}

// Embed delegates to the current client.
func (s *Swapper) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.current.Load().client.Embed(ctx, text)
}

// Complete delegates to the current client.
func (s *Swapper) Complete(ctx context.Context, system, user string) (string, error) {
	return s.current.Load().client.Complete(ctx, system, user)
}
