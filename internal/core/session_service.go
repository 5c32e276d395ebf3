package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSessionExchange is returned when the identity provider rejects the ID
// token or the exchange fails.
var ErrSessionExchange = errors.New("session cookie exchange failed")

// sessionCookieExpiry is the fixed lifetime of issued session cookies.
const sessionCookieExpiry = 5 * 24 * time.Hour

// CookieMinter is the subset of the Firebase Auth client used for session
// issuance. *auth.Client satisfies it.
type CookieMinter interface {
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	minter CookieMinter
}

// NewSessionService creates a new sessionService backed by the Firebase Auth
// client.
func NewSessionService(minter CookieMinter) SessionService {
	return &sessionService{minter: minter}
}

// IssueSessionCookie exchanges a client-side Firebase ID token for a signed
// session cookie with a fixed 5-day expiry.
func (s *sessionService) IssueSessionCookie(ctx context.Context, idToken string) (string, time.Duration, error) {
	if idToken == "" {
		return "", 0, fmt.Errorf("%w: idToken is required", ErrInvalidInput)
	}

	cookie, err := s.minter.SessionCookie(ctx, idToken, sessionCookieExpiry)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrSessionExchange, err)
	}
	return cookie, sessionCookieExpiry, nil
}
