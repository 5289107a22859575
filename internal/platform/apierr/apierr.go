// Package apierr classifies service errors so handlers can answer with the
// right HTTP status without knowing where the error came from.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mch/mch/internal/platform/db"
	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/geo"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
)

// Error is a service error with a client-safe message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Invalid(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Msg: what + " not found"}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// Wrap attaches kind and message to err while keeping it for errors.Is.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

var statusByKind = map[Kind]int{
	KindInternal:     http.StatusInternalServerError,
	KindInvalid:      http.StatusBadRequest,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
}

// Classify works out the kind of err, looking through wrapping.
func Classify(err error) Kind {
	var ae *Error
	var ce *geo.ChainError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &ae):
		return ae.Kind
	case validate.IsValidation(err), errors.As(err, &ce):
		return KindInvalid
	case db.IsNoRows(err):
		return KindNotFound
	case db.IsUniqueViolation(err, ""):
		return KindConflict
	case db.IsForeignKeyViolation(err):
		return KindInvalid
	}
	return KindInternal
}

// HTTP converts err to an echo error. Internal errors get a generic message
// and keep the cause for the request logger.
func HTTP(err error) error {
	if err == nil {
		return nil
	}
	kind := Classify(err)
	status := statusByKind[kind]
	switch {
	case kind == KindInternal:
		return echo.NewHTTPError(status, "internal server error").SetInternal(err)
	case db.IsNoRows(err) && !isAPIError(err):
		return echo.NewHTTPError(status, "not found")
	case db.IsUniqueViolation(err, "") && !isAPIError(err):
		return echo.NewHTTPError(status, "record already exists")
	case db.IsForeignKeyViolation(err) && !isAPIError(err):
		return echo.NewHTTPError(status, "referenced record does not exist")
	}
	return echo.NewHTTPError(status, err.Error())
}

func isAPIError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

// HTTPLookup is HTTP for single-record reads: a missing row becomes
// "<what> not found" and every other failure keeps its own status.
func HTTPLookup(err error, what string) error {
	if db.IsNoRows(err) && !isAPIError(err) {
		return echo.NewHTTPError(http.StatusNotFound, what+" not found")
	}
	return HTTP(err)
}
