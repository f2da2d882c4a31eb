package handler

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"testing"

	"golang.org/x/oauth2"

	"github.com/sakif/aptx/internal/auth"
	"github.com/sakif/aptx/internal/repository/jsonfile"
	"github.com/sakif/aptx/internal/service"
	"github.com/sakif/aptx/internal/session"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeProvider stands in for Discord.
type fakeProvider struct {
	ident       *auth.DiscordUser
	exchangeErr error
	identityErr error
	gotCode     string
}

func (f *fakeProvider) AuthURL(state string) string {
	return "https://discord.test/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	f.gotCode = code
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{AccessToken: "access-" + code}, nil
}

func (f *fakeProvider) FetchIdentity(context.Context, *oauth2.Token) (*auth.DiscordUser, error) {
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return f.ident, nil
}

type authFixture struct {
	handler  *AuthHandler
	provider *fakeProvider
	states   *auth.StateSigner
	sessions *session.MemoryStore
	db       *jsonfile.DB
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db, err := jsonfile.New(t.TempDir(), discardLogger)
	if err != nil {
		t.Fatalf("jsonfile.New: %v", err)
	}
	states, err := auth.NewStateSigner("handler-test-secret-0123456789")
	if err != nil {
		t.Fatal(err)
	}
	sessions := session.NewMemoryStore()
	provider := &fakeProvider{ident: &auth.DiscordUser{ID: "1001", Username: "nelly", Avatar: "hash"}}

	authService := service.NewAuthService(db.Users(), db.Site(), sessions, discardLogger)
	pages := NewPageHandler(t.TempDir(), discardLogger)

	return &authFixture{
		handler:  NewAuthHandler(provider, states, authService, pages, true, discardLogger),
		provider: provider,
		states:   states,
		sessions: sessions,
		db:       db,
	}
}
