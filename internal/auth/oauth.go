// Package auth drives the Discord OAuth login and resolves sessions on
// incoming requests.
//
// LOGIN FLOW OVERVIEW:
//  1. GET /auth/discord: the server issues a signed state, stores it in the
//     oauth_state cookie and redirects to Discord's authorize page.
//  2. Discord redirects back to /auth/callback?code=...&state=...
//  3. The server checks the state against the cookie, exchanges the code
//     for an access token and fetches the user's identity.
//  4. The user is upserted and a session is created; the session token goes
//     into the "session" HttpOnly cookie.
//  5. On every later request the Sessions middleware resolves the cookie to
//     the user and puts it in the request context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/aptx/internal/apperror"
)

// Discord's OAuth2 and API endpoints.
const (
	DiscordAuthURL  = "https://discord.com/api/oauth2/authorize"
	DiscordTokenURL = "https://discord.com/api/oauth2/token"
	DiscordUserURL  = "https://discord.com/api/users/@me"

	discordCDN        = "https://cdn.discordapp.com/avatars"
	PlaceholderAvatar = "https://via.placeholder.com/128/1a1a2e/ffffff?text=User"
)

// DefaultHTTPTimeout bounds every call to Discord so a hung provider cannot
// hold the callback request forever.
const DefaultHTTPTimeout = 10 * time.Second

// DiscordUser is the part of Discord's /users/@me response we use.
//
// Discord API docs: https://discord.com/developers/docs/resources/user#user-object
type DiscordUser struct {
	ID       string `json:"id"`       // snowflake, stable for the account's lifetime
	Username string `json:"username"`
	Avatar   string `json:"avatar"` // avatar hash, empty when the user has none
}

// AvatarURL returns the CDN URL of the user's avatar, or a placeholder image
// when they have not set one.
func (u *DiscordUser) AvatarURL() string {
	if u.Avatar == "" {
		return PlaceholderAvatar
	}
	return fmt.Sprintf("%s/%s/%s.png", discordCDN, u.ID, u.Avatar)
}

// ExchangeError is returned when the token endpoint answers with an OAuth
// error object, e.g. {"error":"invalid_grant","error_description":"..."}.
type ExchangeError struct {
	Code        string
	Description string
}

func (e *ExchangeError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("auth: code exchange failed: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("auth: code exchange failed: %s", e.Code)
}

// Is makes an ExchangeError match apperror.ErrUpstream.
func (e *ExchangeError) Is(target error) bool {
	return target == apperror.ErrUpstream
}

// ProviderConfig configures a DiscordProvider. The endpoint fields default
// to Discord's; tests point them at an httptest server.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthURL    string
	TokenURL   string
	UserURL    string
	HTTPClient *http.Client
}

// DiscordProvider wraps golang.org/x/oauth2 for Discord's authorization
// code flow.
type DiscordProvider struct {
	config     *oauth2.Config
	userURL    string
	httpClient *http.Client
}

// NewDiscordProvider creates a provider requesting the "identify" scope,
// which is enough to read the id, username and avatar.
func NewDiscordProvider(cfg ProviderConfig) *DiscordProvider {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DiscordAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DiscordTokenURL
	}
	userURL := cfg.UserURL
	if userURL == "" {
		userURL = DiscordUserURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return &DiscordProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
				// Discord accepts client credentials in the form body.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userURL:    userURL,
		httpClient: client,
	}
}

// AuthURL returns the authorize URL the browser is redirected to.
// It carries client_id, redirect_uri, response_type=code, scope=identify
// and the given state.
func (p *DiscordProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token.
func (p *DiscordProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.config.Exchange(p.clientContext(ctx), code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.ErrorCode != "" {
			return nil, &ExchangeError{
				Code:        retrieveErr.ErrorCode,
				Description: retrieveErr.ErrorDescription,
			}
		}
		return nil, apperror.Upstream("auth: exchanging OAuth code", err)
	}
	return token, nil
}

// FetchIdentity calls /users/@me with the access token as bearer credential.
func (p *DiscordProvider) FetchIdentity(ctx context.Context, token *oauth2.Token) (*DiscordUser, error) {
	ctx = p.clientContext(ctx)
	// oauth2.Config.Client adds "Authorization: Bearer <token>" to every request.
	client := p.config.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building identity request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.Upstream("auth: calling Discord /users/@me", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream("auth: Discord /users/@me failed",
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var user DiscordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, apperror.Upstream("auth: decoding Discord /users/@me response", err)
	}
	if user.ID == "" {
		return nil, apperror.Upstream("auth: Discord returned a user without an id", nil)
	}

	return &user, nil
}

// clientContext makes the oauth2 package use our HTTP client (and its
// timeout) for token and API calls.
func (p *DiscordProvider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}
