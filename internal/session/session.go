// Package session maps opaque session tokens to logged-in users.
//
// The browser only ever holds the token (in the "session" cookie). The user
// record lives server-side in a Store. Handlers and middleware depend on the
// Store interface, never on a concrete implementation:
//
//   - MemoryStore keeps sessions for the lifetime of the process. A restart
//     logs everybody out. There is no expiry and no renewal.
//   - RedisStore keeps them in Redis, so they survive restarts and can be
//     shared by several processes.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sakif/aptx/internal/model"
)

// ErrNoSession is returned by Resolve when the token is unknown or empty.
var ErrNoSession = errors.New("session: no such session")

// TokenBytes is the amount of randomness in a token. 32 bytes = 256 bits,
// hex encoded to 64 characters.
const TokenBytes = 32

// maxCreateAttempts bounds the collision retry loop. With 256-bit tokens a
// single retry is already astronomically unlikely.
const maxCreateAttempts = 5

// Store creates, resolves and destroys sessions.
type Store interface {
	// Create starts a session for user and returns its token. The token
	// never collides with a live session.
	Create(ctx context.Context, user model.User) (string, error)
	// Resolve returns the session's user, or ErrNoSession.
	Resolve(ctx context.Context, token string) (*model.User, error)
	// Destroy ends the session. Unknown tokens are not an error.
	Destroy(ctx context.Context, token string) error
}

// NewToken returns a fresh random session token.
func NewToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: reading random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
