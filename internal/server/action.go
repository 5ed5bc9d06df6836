package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

const maxBodyBytes = 8 << 20

// Request is the explicit input of an [Action], captured from the HTTP request before it runs.
type Request struct {
	Method string
	Path   string
	Format Format
	Vars   map[string]string
	Query  url.Values
	Header http.Header
	Body   []byte

	// User is the signed-in user, or nil for anonymous and API-token requests.
	User *models.UserInfo
}

// Result is what an [Action] produced. The [Serializer] chosen for the request writes it.
type Result struct {
	Status int
	Header http.Header

	// Value is encoded by the JSON serializer; Raw, when set, is written instead.
	Value any
	Raw   []byte

	// View and Title select the HTML template; HTML, when set, replaces Value as its data.
	View  string
	Title string
	HTML  any
}

// Action handles one route without touching the response writer.
type Action func(ctx context.Context, req Request) (Result, error)

// dispatch adapts an [Action] to [http.Handler]: it negotiates the [Serializer], reads the body,
// runs the action and maps returned errors to statuses.
func dispatch(action Action, html Serializer, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := Negotiate(r)
		serializer := negotiated(r, html)

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			write(w, serializer, errorResult(fmt.Errorf("%w: %v", shared.ErrInvalidInput, err), logger), logger)
			return
		}

		req := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Format: format,
			Vars:   Vars(r),
			Query:  r.URL.Query(),
			Header: r.Header,
			Body:   body,
			User:   UserFrom(r.Context()),
		}

		res, err := action(r.Context(), req)
		if err != nil {
			res = errorResult(err, logger)
		}
		write(w, serializer, res, logger)
	})
}

// negotiated returns the [Serializer] for r's negotiated [Format].
func negotiated(r *http.Request, html Serializer) Serializer {
	if Negotiate(r) == FormatHTML {
		return html
	}
	return JSONSerializer{}
}

func write(w http.ResponseWriter, serializer Serializer, res Result, logger *log.Logger) {
	for k, vs := range res.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}

	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}

	if status == http.StatusNoContent || status == http.StatusNotModified {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", serializer.ContentType())
	w.WriteHeader(status)
	if err := serializer.Serialize(w, res); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// errorResult maps an action error to its HTTP status.
func errorResult(err error, logger *log.Logger) Result {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return Result{Status: http.StatusUnprocessableEntity, Value: verrs, View: viewErrors, Title: "Unprocessable Entity"}
	case errors.Is(err, shared.ErrSongNotFound),
		errors.Is(err, shared.ErrListNotFound),
		errors.Is(err, shared.ErrEntryNotFound):
		return statusResult(http.StatusNotFound, "not found")
	case errors.Is(err, shared.ErrNotAuthenticated):
		return statusResult(http.StatusUnauthorized, "HTTP Token: Access denied.")
	case errors.Is(err, shared.ErrSessionNotFound):
		return statusResult(http.StatusUnauthorized, "not signed in")
	case errors.Is(err, shared.ErrForbidden):
		return statusResult(http.StatusForbidden, "forbidden")
	case errors.Is(err, shared.ErrInvalidInput):
		return statusResult(http.StatusBadRequest, err.Error())
	default:
		logger.Error("request failed", "error", err)
		return statusResult(http.StatusInternalServerError, "internal server error")
	}
}

func statusResult(status int, msg string) Result {
	return Result{
		Status: status,
		Value:  errorBody{Error: msg},
		View:   viewErrors,
		Title:  http.StatusText(status),
		HTML:   map[string]string{"error": msg},
	}
}
