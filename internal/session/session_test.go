package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/aptx/internal/model"
)

func TestNewToken_Format(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, token, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", token)
}

func TestNewToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token, err := NewToken()
		require.NoError(t, err)
		require.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}

func TestMemoryStore_CreateResolveDestroy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := model.User{ID: "42", Username: "ana"}

	token, err := store.Create(ctx, user)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	got, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user, *got)

	require.NoError(t, store.Destroy(ctx, token))

	_, err = store.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore_ResolveUnknownAndEmpty(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = store.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestMemoryStore_DestroyIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	assert.NoError(t, store.Destroy(context.Background(), "never-existed"))
	assert.NoError(t, store.Destroy(context.Background(), ""))
}

func TestMemoryStore_SameUserGetsDistinctSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := model.User{ID: "42"}

	a, err := store.Create(ctx, user)
	require.NoError(t, err)
	b, err := store.Create(ctx, user)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, store.Len())

	// logging out of one browser keeps the other logged in
	require.NoError(t, store.Destroy(ctx, a))
	_, err = store.Resolve(ctx, b)
	assert.NoError(t, err)
}

func TestMemoryStore_RetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	tokens := []string{"dup", "dup", "fresh"}
	store.newToken = func() (string, error) {
		next := tokens[0]
		tokens = tokens[1:]
		return next, nil
	}

	first, err := store.Create(ctx, model.User{ID: "1"})
	require.NoError(t, err)
	second, err := store.Create(ctx, model.User{ID: "2"})
	require.NoError(t, err)

	assert.Equal(t, "dup", first)
	assert.Equal(t, "fresh", second)

	u, err := store.Resolve(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID, "a collision must not overwrite the live session")
}

func TestMemoryStore_GivesUpAfterRepeatedCollisions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.newToken = func() (string, error) { return "always", nil }

	_, err := store.Create(ctx, model.User{ID: "1"})
	require.NoError(t, err)

	_, err = store.Create(ctx, model.User{ID: "2"})
	assert.Error(t, err)
}

func TestMemoryStore_TokenSourceError(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("entropy exhausted")
	store.newToken = func() (string, error) { return "", boom }

	_, err := store.Create(context.Background(), model.User{ID: "1"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_ConcurrentUse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := store.Create(ctx, model.User{ID: "u"})
			if !assert.NoError(t, err) {
				return
			}
			_, err = store.Resolve(ctx, token)
			assert.NoError(t, err)
			assert.NoError(t, store.Destroy(ctx, token))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, store.Len())
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
