package provider

import (
	"context"
	"testing"
)

type stubClient struct {
	name          string
	embedCalls    int
	completeCalls int
}

func (c *stubClient) Embed(context.Context, string) ([]float32, error) {
	c.embedCalls++
	return []float32{1}, nil
}

func (c *stubClient) Complete(context.Context, string, string) (string, error) {
	c.completeCalls++
	return c.name, nil
}

func TestSwapperDelegates(t *testing.T) {
	first := &stubClient{name: "first"}
	s := NewSwapper(first)

	if _, err := s.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	got, err := s.Complete(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "first" || first.embedCalls != 1 || first.completeCalls != 1 {
		t.Errorf("calls did not reach the initial client: %+v", first)
	}
}

func TestSwapperSwap(t *testing.T) {
	first := &stubClient{name: "first"}
	second := &stubClient{name: "second"}
	s := NewSwapper(first)

	s.Swap(second)

	got, err := s.Complete(context.Background(), "sys", "usr")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "second" {
		t.Errorf("Complete() = %q, want %q", got, "second")
	}
	if first.completeCalls != 0 {
		t.Errorf("old client still receiving calls after swap")
	}
}

func TestSwapperIgnoresNil(t *testing.T) {
	first := &stubClient{name: "first"}
	s := NewSwapper(first)

	s.Swap(nil)

	if got, _ := s.Complete(context.Background(), "sys", "usr"); got != "first" {
		t.Errorf("Complete() = %q, want %q after nil swap", got, "first")
	}
}
