package sheet

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures. Callers use it to decide whether a
// failure is actionable (config), retryable (transport), or final.
type Kind string

const (
	// KindConfig covers a missing script URL and HTML responses, which mean
	// the script endpoint is misdeployed rather than returning bad data.
	KindConfig Kind = "config"
	// KindTransport covers network failures and non-2xx HTTP statuses.
	KindTransport Kind = "transport"
	// KindFormat covers responses that are neither HTML nor parseable JSON,
	// or JSON in none of the accepted shapes.
	KindFormat Kind = "format"
	// KindApp covers responses that explicitly declare failure.
	KindApp Kind = "app"
)

// Error is a classified gateway failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sheet %s error: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("sheet %s error: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the classification of err, or "" if err is not a gateway
// error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
