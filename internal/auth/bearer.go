// Package auth verifies bearer credentials and resolves them to stable
// user identifiers. It is the leaf dependency of both gateway handlers:
// no external call happens before verification passes.
package auth

import (
	"strings"

	"github.com/talkbase/answerd/pkg/errors"
)

const bearerPrefix = "Bearer "

// ParseBearer extracts the token from an Authorization header value.
// An absent header is a missing-credential error; a header whose token is
// empty after prefix stripping is malformed.
func ParseBearer(header string) (string, error) {
	if header == "" {
		return "", errors.NewAuthError(errors.ReasonMissingCredential,
			"authorization header is required")
	}

	token := header
	if strings.HasPrefix(header, bearerPrefix) {
		token = header[len(bearerPrefix):]
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.NewAuthError(errors.ReasonMalformedCredential,
			"bearer token is empty")
	}

	return token, nil
}
