package service

import (
	"errors"
	"fmt"

	"github.com/fortuna/courtside/internal/store/repository"
)

// Error kinds. Every error returned by this package matches exactly one of
// these under errors.Is.
var (
	// ErrDataUnavailable means the store could not be reached or a query failed
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrNoData means a valid query matched nothing where a value was required
	ErrNoData = errors.New("no data")
	// ErrAmbiguousMatchSelection means resolution did not get exactly one match
	// id backed by exactly two rows
	ErrAmbiguousMatchSelection = errors.New("ambiguous match selection")
	// ErrUnresolvableSide means home and away could not be told apart
	ErrUnresolvableSide = errors.New("unresolvable home/away side")
	// ErrCardinalityMismatch means match_info and match_stats do not pair 1:1
	ErrCardinalityMismatch = errors.New("match_info/match_stats cardinality mismatch")
	// ErrInvalidArgument means the caller passed a blank or malformed input
	ErrInvalidArgument = errors.New("invalid argument")
)

// Error carries the failing operation alongside its kind
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func errorf(op string, kind error, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// storeError classifies a repository failure
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(op, ErrNoData, err)
	}
	return newError(op, ErrDataUnavailable, err)
}
