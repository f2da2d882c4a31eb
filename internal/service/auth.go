package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/aptx/internal/auth"
	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/repository"
	"github.com/sakif/aptx/internal/session"
)

// AuthService turns a verified Discord identity into a stored user and a
// session, and serves the caller's profile.
//
// It never sees HTTP: the handler does the OAuth redirects and cookies.
type AuthService struct {
	users    repository.UserRepository
	site     repository.SiteRepository
	sessions session.Store
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	site repository.SiteRepository,
	sessions session.Store,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		site:     site,
		sessions: sessions,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AuthResult bundles the stored user and the new session token so the
// handler can set the cookie and redirect in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login upserts the user behind ident and opens a session for them.
//
// The user record is written first. If that fails no session is created,
// so a session never points at a user that was not persisted.
func (s *AuthService) Login(ctx context.Context, ident *auth.DiscordUser, sourceIP string) (*AuthResult, error) {
	if ident == nil || ident.ID == "" {
		return nil, errors.New("service/auth: identity must have an id")
	}

	user := &model.User{
		ID:        ident.ID,
		Username:  ident.Username,
		AvatarURL: ident.AvatarURL(),
		SourceIP:  sourceIP,
		CreatedAt: s.now(),
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user %s: %w", user.ID, err)
	}

	token, err := s.sessions.Create(ctx, *user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating session for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via Discord",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Profile returns the user with their badges. Users without an entry in
// the badges collection get an empty list.
func (s *AuthService) Profile(ctx context.Context, user *model.User) (*model.Profile, error) {
	badges, err := s.site.Badges(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading badges for %s: %w", user.ID, err)
	}
	if badges == nil {
		badges = []model.Badge{}
	}
	return &model.Profile{User: *user, Badges: badges}, nil
}

// Logout destroys the session. An empty or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return fmt.Errorf("service/auth: destroying session: %w", err)
	}
	return nil
}
