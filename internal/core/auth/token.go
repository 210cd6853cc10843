package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
)

var (
	ErrMissingToken  = errors.New("authorization header missing")
	ErrInvalidToken  = errors.New("invalid authorization token")
	ErrNotConfigured = errors.New("admin token not configured")
)

// StaticToken checks bearer credentials against one shared secret.
type StaticToken struct {
	secret []byte
}

func NewStaticToken(secret string) *StaticToken {
	return &StaticToken{secret: []byte(secret)}
}

func (s *StaticToken) Configured() bool { return len(s.secret) > 0 }

// Verify checks an Authorization header value of the form "Bearer <token>".
// A missing header wins over an unset secret, which rejects everything else.
func (s *StaticToken) Verify(header string) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingToken
	}
	if !s.Configured() {
		return ErrNotConfigured
	}
	scheme, tok, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ErrInvalidToken
	}
	tok = strings.TrimSpace(tok)
	if tok == "" || subtle.ConstantTimeCompare([]byte(tok), s.secret) != 1 {
		return ErrInvalidToken
	}
	return nil
}
