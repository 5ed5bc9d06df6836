package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/shared"
)

const tokenChallenge = `Token realm="Application"`

// Verifier checks an access token, returning [shared.ErrNotAuthenticated] for unknown tokens.
type Verifier interface {
	Verify(token string) error
}

// TokenFromHeader extracts the token from an Authorization header value.
//
// Accepts "Bearer <token>" and `Token token="<token>"` (quotes optional, extra parameters ignored).
func TokenFromHeader(header string) string {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(scheme) {
	case "bearer":
		return rest
	case "token":
		for _, param := range strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == ';' }) {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok {
				continue
			}
			if strings.TrimSpace(key) == "token" {
				return strings.Trim(strings.TrimSpace(value), `"`)
			}
		}
		if !strings.Contains(rest, "=") {
			return rest
		}
	}

	return ""
}

// RequireToken rejects requests without a registered token before the wrapped handler
// reads the body. Rejections are written in the negotiated representation.
func RequireToken(verifier Verifier, html Serializer, logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromHeader(r.Header.Get("Authorization"))

			err := shared.ErrMissingToken
			if token != "" {
				err = verifier.Verify(token)
			}

			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrMissingToken):
				res := statusResult(http.StatusUnauthorized, "HTTP Token: Access denied.")
				res.Header = http.Header{"Www-Authenticate": {tokenChallenge}}
				write(w, negotiated(r, html), res, logger)
			default:
				logger.Error("token verification failed", "error", err)
				write(w, negotiated(r, html), statusResult(http.StatusInternalServerError, "internal server error"), logger)
			}
		})
	}
}
