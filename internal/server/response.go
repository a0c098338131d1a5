package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/pagekeep/pagekeep/internal/service"
)

// HTTPError carries a status code and a user-facing message alongside the
// underlying cause.
type HTTPError struct {
	cause   error
	Code    int
	Message string
}

func (he *HTTPError) Error() string {
	return he.Message
}

func (he *HTTPError) Unwrap() error {
	return he.cause
}

func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{cause: errors.New(message), Code: code, Message: message}
}

func ErrBadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

func ErrNotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message)
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logrus.Errorf("failed to marshal response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"internal server error"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]any{
		"error": map[string]string{"message": message},
	})
}

// AppHandler is a handler that returns an error instead of writing error
// responses itself.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to http.HandlerFunc, mapping service
// errors onto status codes and a uniform JSON error envelope.
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := handler(w, r)
		if err == nil {
			return
		}

		var httpErr *HTTPError
		var status int
		var message string

		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			message = httpErr.Message
			if cause := errors.Unwrap(httpErr); cause != nil && cause.Error() != message {
				logrus.Warnf("%s %s: %d %s: %v", r.Method, r.URL.Path, status, message, cause)
			} else {
				logrus.Warnf("%s %s: %d %s", r.Method, r.URL.Path, status, message)
			}

		case errors.Is(err, service.ErrDocumentNotFound),
			errors.Is(err, service.ErrShelfNotFound),
			errors.Is(err, service.ErrBookmarkNotFound),
			errors.Is(err, service.ErrGoalNotFound),
			errors.Is(err, service.ErrNoFile):
			status = http.StatusNotFound
			message = err.Error()
			logrus.Infof("%s %s: not found: %v", r.Method, r.URL.Path, err)

		case errors.Is(err, service.ErrMissingMetadata),
			errors.Is(err, service.ErrInvalidKind),
			errors.Is(err, service.ErrEmptyPayload):
			status = http.StatusBadRequest
			message = err.Error()
			logrus.Infof("%s %s: bad request: %v", r.Method, r.URL.Path, err)

		default:
			// the underlying message goes to the caller verbatim
			status = http.StatusInternalServerError
			message = err.Error()
			logrus.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		}

		respondError(w, status, message)
	}
}

// decodeJSON decodes a request body, mapping malformed payloads to 400.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &HTTPError{cause: err, Code: http.StatusBadRequest, Message: "invalid JSON body"}
	}
	return nil
}
