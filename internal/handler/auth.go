package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/sakif/aptx/internal/apperror"
	"github.com/sakif/aptx/internal/auth"
	"github.com/sakif/aptx/internal/model"
	"github.com/sakif/aptx/internal/service"
)

const stateCookie = "oauth_state"

// OAuthProvider is the part of *auth.DiscordProvider the handler needs.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchIdentity(ctx context.Context, token *oauth2.Token) (*auth.DiscordUser, error)
}

// StateSigner issues and checks the OAuth state parameter.
type StateSigner interface {
	Issue() (string, error)
	Verify(state string) error
}

// AuthHandler runs the Discord login flow and the session endpoints.
//
//   - HandleLogin    → redirect the browser to Discord's authorize page
//   - HandleCallback → check state, exchange the code, open a session
//   - HandleLogout   → destroy the session and clear the cookie
//   - HandleUser     → the caller's profile with badges
type AuthHandler struct {
	provider     OAuthProvider
	states       StateSigner
	auth         *service.AuthService
	pages        *PageHandler
	cookieSecure bool
	logger       *slog.Logger
}

func NewAuthHandler(
	provider OAuthProvider,
	states StateSigner,
	authService *service.AuthService,
	pages *PageHandler,
	cookieSecure bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider:     provider,
		states:       states,
		auth:         authService,
		pages:        pages,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// HandleLogin redirects the user to Discord.
//
// HTTP: GET /auth/discord
//
// The signed state goes both into a short-lived HttpOnly cookie and into
// the authorize URL. The callback only proceeds if the two match.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := h.states.Issue()
	if err != nil {
		h.logger.Error("auth login: issuing state", slog.String("error", err.Error()))
		h.pages.RenderError(w, http.StatusInternalServerError, "Erreur d'authentification", "Impossible de démarrer la connexion.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(auth.StateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusFound)
}

// HandleCallback completes the login.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
//
//  1. The state must equal the cookie and carry a valid signature.
//  2. error=... from Discord (the user pressed "Cancel") → /?auth=denied
//  3. The code is exchanged and the identity fetched.
//  4. The user is stored and a session opened.
//  5. The session cookie is set and the browser goes back to /.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || query.Get("state") != cookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		h.pages.RenderError(w, http.StatusBadRequest, "Erreur: état OAuth invalide", "Relancez la connexion depuis la page d'accueil.")
		return
	}
	if err := h.states.Verify(cookie.Value); err != nil {
		h.logger.Warn("auth callback: bad state", slog.String("error", err.Error()))
		h.pages.RenderError(w, http.StatusBadRequest, "Erreur: état OAuth invalide", "Relancez la connexion depuis la page d'accueil.")
		return
	}

	// the state is single-use
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusFound)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.pages.RenderError(w, http.StatusBadRequest, "Erreur: Code manquant", "")
		return
	}

	token, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: code exchange failed", slog.String("error", err.Error()))
		h.authFailed(w, err)
		return
	}

	ident, err := h.provider.FetchIdentity(r.Context(), token)
	if err != nil {
		h.logger.Error("auth callback: identity fetch failed", slog.String("error", err.Error()))
		h.authFailed(w, err)
		return
	}

	result, err := h.auth.Login(r.Context(), ident, clientIP(r))
	if err != nil {
		h.logger.Error("auth callback: login failed", slog.String("error", err.Error()))
		h.authFailed(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusFound)
}

// authFailed renders the 500 page. Provider failures and local failures
// (storage, session store) get different wording.
func (h *AuthHandler) authFailed(w http.ResponseWriter, err error) {
	message := "Une erreur interne est survenue. Réessayez plus tard."
	if errors.Is(err, apperror.ErrUpstream) {
		message = "La connexion avec Discord a échoué. Réessayez plus tard."
	}
	h.pages.RenderError(w, http.StatusInternalServerError, "Erreur d'authentification", message)
}

// HandleLogout destroys the caller's session, if any, and clears the cookie.
//
// HTTP: GET or POST /api/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // written as Max-Age=0
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, successBody)
}

// HandleUser returns the caller's profile with their badges.
//
// HTTP: GET /api/user
// Auth: required
func (h *AuthHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionUser(w, r)
	if !ok {
		return
	}

	profile, err := h.auth.Profile(r.Context(), user)
	if err != nil {
		h.logger.Error("loading profile", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// sessionUser returns the user resolved by auth.Sessions. Routes behind
// auth.RequireSession always have one; without it the caller gets a 401.
func sessionUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return nil, false
	}
	return user, true
}

// clientIP is the request's source address without the port. RealIP has
// already replaced RemoteAddr with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
