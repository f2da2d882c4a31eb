package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const (
	stateIssuer = "aptx-oauth-state"

	// StateTTL is how long the user has to approve the login on Discord.
	StateTTL = 10 * time.Minute
)

// StateSigner issues and checks the OAuth "state" parameter.
//
// The state is an HS256 JWT with a random jti and a short expiry. It is
// set in the oauth_state cookie and sent to Discord, and the callback only
// proceeds when Discord echoes back the exact cookie value and the
// signature and expiry check out. That ties the callback to a login this
// server started in the same browser, which blocks login CSRF.
type StateSigner struct {
	secret []byte
	now    func() time.Time
}

// NewStateSigner creates a StateSigner. The secret must be at least 16
// characters.
func NewStateSigner(secret string) (*StateSigner, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: state secret must be at least 16 characters")
	}
	return &StateSigner{secret: []byte(secret), now: time.Now}, nil
}

// Issue returns a new signed state valid for StateTTL.
func (s *StateSigner) Issue() (string, error) {
	return s.issueWithTTL(StateTTL)
}

func (s *StateSigner) issueWithTTL(ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        xid.New().String(),
		Issuer:    stateIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing state: %w", err)
	}
	return signed, nil
}

// Verify checks the state's signature, issuer and expiry.
func (s *StateSigner) Verify(state string) error {
	token, err := jwt.ParseWithClaims(
		state,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errors.New("auth: state expired")
		}
		return fmt.Errorf("auth: invalid state: %w", err)
	}
	if !token.Valid {
		return errors.New("auth: invalid state")
	}
	return nil
}
