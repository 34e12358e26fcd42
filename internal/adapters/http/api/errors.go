package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/mission-control/internal/adapters/knowledge"
	"github.com/okian/mission-control/internal/adapters/payments"
	"github.com/okian/mission-control/internal/adapters/postgrest"
	"github.com/okian/mission-control/internal/adapters/repository"
	"github.com/okian/mission-control/internal/adapters/workspace"
	service "github.com/okian/mission-control/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("not configured")
	ErrUpstream     = errors.New("upstream failure")
)

// opError names the failing operation and classifies the failure.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.err != nil && e.kind != nil:
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
	case e.err != nil:
		return fmt.Sprintf("%s: %v", e.op, e.err)
	default:
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	}
}

func (e *opError) Unwrap() []error {
	var out []error
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// NewKind returns an error of kind for op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// Wrap attaches op to err, classifying it by the error chain.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, kind: classify(err), err: err}
}

// WrapKind attaches op and an explicit kind to err.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// classify maps errors from the lower layers onto API kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, workspace.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, workspace.ErrNotAllowed):
		return ErrNotFound
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, repository.ErrInvalidParam),
		errors.Is(err, repository.ErrEmptyPatch),
		errors.Is(err, repository.ErrMissingID),
		errors.Is(err, postgrest.ErrUnsafeFilter),
		errors.Is(err, postgrest.ErrInvalidField),
		errors.Is(err, workspace.ErrBadEntry),
		errors.Is(err, knowledge.ErrEmptyQuery),
		postgrest.IsClientError(err):
		return ErrBadRequest
	case errors.Is(err, service.ErrNotConfigured),
		errors.Is(err, payments.ErrNotConfigured):
		return ErrUnavailable
	}
	return ErrUpstream
}

// statusFor returns the HTTP status for err.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
