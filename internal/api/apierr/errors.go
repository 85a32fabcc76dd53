package apierr

import (
	"errors"
	"net/http"

	"github.com/pokeslot/slotserver/internal/api/response"
	"github.com/pokeslot/slotserver/internal/model"
	"github.com/pokeslot/slotserver/internal/services/auth"
)

// User-facing failure messages (wire contract; clients match on these)
const (
	MsgUsernameExists     = "Username already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidSession     = "Invalid session"
	MsgInternalError      = "Internal server error"
)

// httpError pairs an HTTP status with a user-facing message
type httpError struct {
	status  int
	message string
}

// Error implements the error interface
func (e *httpError) Error() string {
	return e.message
}

// WriteError converts an error into the uniform {success:false, error}
// failure body. Recoverable business failures keep HTTP 200 so clients
// branch on the success flag; only malformed requests and storage failures
// surface as protocol-level errors, and storage detail never leaves the
// process.
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	response.Fail(w, he.status, he.message)
}

func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrUsernameExists):
		return &httpError{http.StatusOK, MsgUsernameExists}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusOK, MsgInvalidCredentials}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusOK, MsgInvalidSession}
	default:
		return &httpError{http.StatusInternalServerError, MsgInternalError}
	}
}

// NewInvalidRequestError creates a fail-fast error for malformed requests
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, message}
}

// NewFailure creates a handled failure carried on an HTTP 200 response
func NewFailure(message string) error {
	return &httpError{http.StatusOK, message}
}
