package auth

import (
	"context"
	"testing"
	"time"

	"github.com/talkbase/answerd/pkg/errors"
)

type countingVerifier struct {
	calls  int
	userID string
	err    error
}

func (v *countingVerifier) Verify(context.Context, string) (string, error) {
	v.calls++
	return v.userID, v.err
}

func TestCachingVerifierMemoizesSuccess(t *testing.T) {
	inner := &countingVerifier{userID: "user-1"}
	v := NewCachingVerifier(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		userID, err := v.Verify(ctx, "token-a")
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if userID != "user-1" {
			t.Errorf("userID = %q", userID)
		}
	}

	if inner.calls != 1 {
		t.Errorf("inner verifier called %d times, want 1", inner.calls)
	}

	// A different token is its own memo entry.
	if _, err := v.Verify(ctx, "token-b"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("inner verifier called %d times, want 2", inner.calls)
	}
}

func TestCachingVerifierDoesNotCacheFailures(t *testing.T) {
	inner := &countingVerifier{err: errors.NewAuthError(errors.ReasonInvalidCredential, "nope")}
	v := NewCachingVerifier(inner, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := v.Verify(ctx, "bad-token"); err == nil {
			t.Fatal("Verify() should fail")
		}
	}

	if inner.calls != 2 {
		t.Errorf("inner verifier called %d times, want 2 (failures must not be cached)", inner.calls)
	}
}
