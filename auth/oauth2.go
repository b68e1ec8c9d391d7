package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/probelabs/apiprobe/transport"
)

// TokenSource acquires a fresh access token from a credential source.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Acquire must honor cancellation/deadlines.
// - Errors: Acquire returns an error on any failure; it never returns
//   a token with an empty AccessToken.
type TokenSource interface {
	Acquire(ctx context.Context) (*oauth2.Token, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (*oauth2.Token, error)

// Acquire calls f.
func (f TokenSourceFunc) Acquire(ctx context.Context) (*oauth2.Token, error) {
	return f(ctx)
}

// ClientCredentialsSource acquires tokens via the OAuth 2.0
// client-credentials grant.
type ClientCredentialsSource struct {
	config clientcredentials.Config
}

// NewClientCredentialsSource creates a source for the given client.
func NewClientCredentialsSource(clientID, clientSecret, tokenURL string, scopes ...string) *ClientCredentialsSource {
	return &ClientCredentialsSource{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}
}

// Acquire fetches a fresh token from the token endpoint.
func (s *ClientCredentialsSource) Acquire(ctx context.Context) (*oauth2.Token, error) {
	return s.config.Token(ctx)
}

// OAuth2Config configures the refreshable token strategy.
type OAuth2Config struct {
	// Source acquires tokens. Required.
	Source TokenSource

	// Skew is the safety margin before expiry at which the cached
	// token is treated as stale. Default: 30s.
	Skew time.Duration

	// HeaderName overrides the target header. Default: "Authorization".
	HeaderName string
}

// OAuth2 is the refreshable-token strategy. It caches the acquired
// token and refreshes it on demand; under N concurrent callers racing
// on an expired cache exactly one acquisition reaches the source and
// every caller observes the refreshed token.
type OAuth2 struct {
	config OAuth2Config

	mu    sync.RWMutex
	token *oauth2.Token
	group singleflight.Group
}

// NewOAuth2 creates a refreshable token strategy.
func NewOAuth2(config OAuth2Config) *OAuth2 {
	// Apply defaults
	if config.Skew <= 0 {
		config.Skew = 30 * time.Second
	}
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}

	return &OAuth2{config: config}
}

// Name returns "oauth2".
func (a *OAuth2) Name() string { return "oauth2" }

// Apply ensures a valid token and sets it on a copy of the call.
func (a *OAuth2) Apply(ctx context.Context, call *transport.Call) (*transport.Call, error) {
	token, err := a.EnsureValid(ctx)
	if err != nil {
		return nil, err
	}
	return call.WithHeader(a.config.HeaderName, "Bearer "+token.AccessToken), nil
}

// EnsureValid returns the cached token when it is still fresh, and
// otherwise refreshes it. Refresh is serialized per strategy: the
// cache is re-checked inside the flight so a caller that lost the
// race reuses the winner's token instead of acquiring again.
func (a *OAuth2) EnsureValid(ctx context.Context) (*oauth2.Token, error) {
	if a.config.Source == nil {
		return nil, ErrNoSource
	}

	a.mu.RLock()
	token := a.token
	a.mu.RUnlock()
	if a.fresh(token) {
		return token, nil
	}

	v, err, _ := a.group.Do("refresh", func() (any, error) {
		// Re-check: another caller may have refreshed while we
		// waited to enter the flight.
		a.mu.RLock()
		token := a.token
		a.mu.RUnlock()
		if a.fresh(token) {
			return token, nil
		}

		acquired, err := a.config.Source.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAcquireFailed, err)
		}
		if acquired == nil || acquired.AccessToken == "" {
			return nil, fmt.Errorf("%w: source returned empty token", ErrAcquireFailed)
		}
		if acquired.Expiry.IsZero() {
			// Some sources omit expires_in; fall back to the
			// token's own exp claim when it is a JWT.
			if exp, ok := jwtExpiry(acquired.AccessToken); ok {
				withExp := *acquired
				withExp.Expiry = exp
				acquired = &withExp
			}
		}

		a.mu.Lock()
		a.token = acquired
		a.mu.Unlock()
		return acquired, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*oauth2.Token), nil
}

// fresh reports whether the cached token can be used without I/O.
// A token without expiry never goes stale.
func (a *OAuth2) fresh(token *oauth2.Token) bool {
	if token == nil || token.AccessToken == "" {
		return false
	}
	if token.Expiry.IsZero() {
		return true
	}
	return time.Until(token.Expiry) > a.config.Skew
}

// jwtExpiry extracts the exp claim from a JWT access token. The token
// is not verified; only the expiry matters here and the server is the
// authority on acceptance.
func jwtExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Ensure OAuth2 implements Strategy
var _ Strategy = (*OAuth2)(nil)
