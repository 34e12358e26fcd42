package postgrest

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for store errors.
var (
	ErrUnsafeFilter = errors.New("unsafe filter value")
	ErrInvalidField = errors.New("invalid field name")
	ErrUnfiltered   = errors.New("refusing unfiltered write")
	ErrRequest      = errors.New("store request failed")
)

// StatusError is a non-success response from the store.
type StatusError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("store: %d %s: %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("store: %d: %s", e.Status, msg)
}

// IsNotFound reports whether err is a store 404 (missing table or row).
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// IsClientError reports whether the store rejected the request as malformed,
// e.g. an unknown column or a bad value for an enum.
func IsClientError(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.Status == http.StatusBadRequest || se.Status == http.StatusConflict ||
		se.Status == http.StatusUnprocessableEntity
}
