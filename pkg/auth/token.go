package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// TokenEnv is the environment variable holding the GitHub access token.
	TokenEnv = "GITHUB_TOKEN"

	// HTTPTimeout bounds every single API request.
	HTTPTimeout = 30 * time.Second
)

// ErrMissingToken is returned when TokenEnv is unset or blank.
var ErrMissingToken = errors.New(TokenEnv + " environment variable not set")

// TokenFromEnv reads the access token. It must be called before any
// network use so a missing token fails the run without side effects.
func TokenFromEnv() (string, error) {
	token := strings.TrimSpace(os.Getenv(TokenEnv))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// TokenSource wraps a personal access token. GitHub tokens do not expire
// through a refresh flow, so the source is static.
func TokenSource(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// GetClient returns an *http.Client that authenticates every request
// with token.
func GetClient(ctx context.Context, token string) *http.Client {
	client := oauth2.NewClient(ctx, TokenSource(token))
	client.Timeout = HTTPTimeout
	return client
}
