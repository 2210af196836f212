package api

import (
	"errors"
	"net/http"
)

// GenericMessage is shown for transport failures and anything else the
// backend did not explain.
const GenericMessage = "Server error. Please try again."

// ServerError is a failure reported by the backend. Message is meant to be
// shown to the user as is.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Unauthorized reports whether the backend rejected the session.
func (e *ServerError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// UserMessage returns the text to show for err.
func UserMessage(err error) string {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return GenericMessage
}
