package knowledge

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/models"
	"github.com/wagnerlima/memory-cloud/knowledge-mcp/internal/query"
)

// Kind classifies a failed operation.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindStore        Kind = "store"
	KindPartialWrite Kind = "partial_write"
	KindUnsupported  Kind = "unsupported"
)

// Error is returned by every knowledge operation that fails.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Failure converts any error into the result shape returned to callers.
func Failure(err error) models.Failure {
	return models.Failure{Success: false, Error: err.Error()}
}

func validationErr(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

func storeErr(op, stage string, err error) error {
	return &Error{Kind: KindStore, Op: op, Err: errors.Wrap(err, stage)}
}

// builderErr classifies an error from the query builder.
func builderErr(op string, err error) error {
	if errors.Is(err, query.ErrUnsupportedOperation) {
		return &Error{Kind: KindUnsupported, Op: op, Err: err}
	}
	return validationErr(op, err)
}
