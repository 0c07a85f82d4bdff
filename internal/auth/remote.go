package auth

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/talkbase/answerd/pkg/errors"
)

// RemoteVerifier delegates token verification to the identity provider's
// user endpoint. Any provider rejection or transport failure maps to
// invalid-or-expired: the caller cannot distinguish a bad token from a
// broken identity provider, and should not.
type RemoteVerifier struct {
	userEndpoint string
	anonKey      string
	httpClient   *http.Client
}

// RemoteConfig configures a RemoteVerifier.
type RemoteConfig struct {
	// IssuerURL is the identity provider base URL.
	IssuerURL string
	// AnonKey is the restricted user-scoped credential sent as the apikey
	// header, as the provider requires alongside the bearer token.
	AnonKey string
	Timeout time.Duration
}

// NewRemoteVerifier creates a verifier backed by the identity provider.
func NewRemoteVerifier(cfg RemoteConfig) *RemoteVerifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &RemoteVerifier{
		userEndpoint: strings.TrimSuffix(cfg.IssuerURL, "/") + "/auth/v1/user",
		anonKey:      cfg.AnonKey,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Verify asks the identity provider who the token belongs to.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userEndpoint, nil)
	if err != nil {
		return "", errors.NewAuthError(errors.ReasonInvalidCredential,
			"build verification request: "+err.Error())
	}
	req.Header.Set("Authorization", bearerPrefix+token)
	if v.anonKey != "" {
		req.Header.Set("apikey", v.anonKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", errors.NewAuthError(errors.ReasonInvalidCredential,
			"identity provider unreachable: "+err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return "", errors.NewAuthError(errors.ReasonInvalidCredential,
			"identity provider rejected token")
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &user); err != nil || user.ID == "" {
		return "", errors.NewAuthError(errors.ReasonInvalidCredential,
			"identity provider returned no user id")
	}

	return user.ID, nil
}
