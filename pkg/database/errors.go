package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLSTATE classes reported when a statement references a missing column or table.
const (
	codeUndefinedColumn pq.ErrorCode = "42703"
	codeUndefinedTable  pq.ErrorCode = "42P01"
)

// SchemaError reports a statement that failed because the schema lacks a
// column or table it references.
type SchemaError struct {
	Op  string
	Err error
}

func (e *SchemaError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *SchemaError) Unwrap() error { return e.Err }

// Wrap annotates err with op and turns undefined column/table failures into a
// *SchemaError. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (pqErr.Code == codeUndefinedColumn || pqErr.Code == codeUndefinedTable) {
		return &SchemaError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
