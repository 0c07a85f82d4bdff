package auth

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachingVerifier memoizes successful verifications so hot tokens do not
// hit the identity provider on every request. Failures are never cached;
// a revoked token is re-checked each time until its memo expires.
type CachingVerifier struct {
	inner Verifier
	memo  *gocache.Cache
}

// NewCachingVerifier wraps a verifier with a TTL memo.
func NewCachingVerifier(inner Verifier, ttl time.Duration) *CachingVerifier {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingVerifier{
		inner: inner,
		memo:  gocache.New(ttl, 2*ttl),
	}
}

// Verify resolves the token, consulting the memo first.
func (c *CachingVerifier) Verify(ctx context.Context, token string) (string, error) {
	if userID, found := c.memo.Get(token); found {
		return userID.(string), nil
	}

	userID, err := c.inner.Verify(ctx, token)
	if err != nil {
		return "", err
	}

	c.memo.SetDefault(token, userID)
	return userID, nil
}
