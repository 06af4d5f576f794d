package services

import "errors"

// Error kinds surfaced by services. Handlers map them to HTTP status codes
// with errors.Is; everything else is treated as an internal error.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error carries a caller-facing message on top of one of the kind sentinels.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func badRequest(msg string) error { return &Error{Kind: ErrBadRequest, Message: msg} }

func conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

func unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }
