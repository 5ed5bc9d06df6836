package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

const (
	stateCookie   = "songbook_oauth_state"
	stateLifetime = 10 * time.Minute
)

// LoginHandler signs users in through an OAuth2 authorization-code provider and keeps the
// result as a session cookie. Implements the [Handler] interface.
//
//	/login          → redirect to the provider with a fresh state
//	/login/redirect → verify state, exchange the code, fetch the user, start a session
//	/logout         → end the session
type LoginHandler struct {
	config      *oauth2.Config
	userInfoURL string
	sessions    SessionStore
	ttl         time.Duration
	secure      bool
	html        Serializer
	logger      *log.Logger
}

// NewLoginHandler creates a LoginHandler for the configured provider.
func NewLoginHandler(cfg shared.AuthConfig, sessions SessionStore, html Serializer, logger *log.Logger) *LoginHandler {
	return &LoginHandler{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		sessions:    sessions,
		ttl:         cfg.SessionTTL(),
		secure:      cfg.SecureCookie,
		html:        html,
		logger:      shared.WithLogger(logger, "component", "login"),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *LoginHandler) Routes() []string {
	return []string{"/login", "/login/redirect", "/logout"}
}

// ServeHTTP dispatches on the login route.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.fail(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch r.URL.Path {
	case "/login":
		h.start(w, r)
	case "/login/redirect":
		h.callback(w, r)
	case "/logout":
		h.logout(w, r)
	default:
		h.fail(w, r, http.StatusNotFound, "not found")
	}
}

func (h *LoginHandler) start(w http.ResponseWriter, r *http.Request) {
	state, err := shared.GenerateToken()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		h.fail(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/login",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// callback validates the state parameter, exchanges the authorization code and starts a session.
func (h *LoginHandler) callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || query.Get("state") != cookie.Value {
		h.logger.Warn("login rejected", "reason", "invalid state parameter")
		h.fail(w, r, http.StatusBadRequest, "Invalid state parameter")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/login", MaxAge: -1})

	code := query.Get("code")
	if code == "" {
		h.logger.Warn("login rejected", "error", query.Get("error"), "description", query.Get("error_description"))
		h.fail(w, r, http.StatusBadRequest, "Authorization failed")
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("token exchange failed", "error", err)
		h.fail(w, r, http.StatusBadGateway, "Token exchange failed")
		return
	}

	user, err := h.fetchUser(r, token)
	if err != nil {
		h.logger.Error("failed to fetch user", "error", err)
		h.fail(w, r, http.StatusBadGateway, "Could not read user information")
		return
	}

	value, err := h.sessions.Issue(*user)
	if err != nil {
		h.logger.Error("failed to start session", "error", err)
		h.fail(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("signed in", "cid", user.CID)
	setSessionCookie(w, value, int(h.ttl.Seconds()), h.secure)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

func (h *LoginHandler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Revoke(cookie.Value); err != nil {
			h.logger.Error("failed to end session", "error", err)
		}
	}
	setSessionCookie(w, "", -1, h.secure)
	http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
}

// fetchUser reads the signed-in user from the provider's userinfo endpoint.
func (h *LoginHandler) fetchUser(r *http.Request, token *oauth2.Token) (*models.UserInfo, error) {
	resp, err := h.config.Client(r.Context(), token).Get(h.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLoginFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: userinfo returned %d: %s", shared.ErrLoginFailed, resp.StatusCode, body)
	}

	var user models.UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: malformed userinfo: %v", shared.ErrLoginFailed, err)
	}
	if user.CID == "" {
		return nil, fmt.Errorf("%w: userinfo has no cid", shared.ErrLoginFailed)
	}
	return &user, nil
}

func (h *LoginHandler) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	write(w, negotiated(r, h.html), statusResult(status, msg), h.logger)
}
