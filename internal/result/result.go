// Package result holds the success/failure envelope returned by every
// service operation.
package result

import (
	"encoding/json"
	"errors"
)

// Code is one of the fixed failure codes.
type Code string

const (
	CodeValidation     Code = "validation_error"
	CodeNotFound       Code = "not_found"
	CodeSchemaMismatch Code = "schema_mismatch"
	CodeInfrastructure Code = "infrastructure_error"
)

// Error is the failure half of a Result.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// Result carries either a value or an Error, never both. Build it with
// Success or Failure; the zero value is not a valid result.
type Result[T any] struct {
	ok    bool
	value T
	err   *Error
}

func Success[T any](v T) Result[T] {
	return Result[T]{ok: true, value: v}
}

func Failure[T any](code Code, message string) Result[T] {
	return Result[T]{err: &Error{Code: code, Message: message}}
}

func (r Result[T]) IsSuccess() bool { return r.ok }

// Value returns the success value and whether the result succeeded.
func (r Result[T]) Value() (T, bool) { return r.value, r.ok }

// Err returns the failure, or nil on success.
func (r Result[T]) Err() *Error {
	if r.ok {
		return nil
	}
	return r.err
}

type envelope[T any] struct {
	IsSuccess bool   `json:"is_success"`
	Value     *T     `json:"value"`
	Error     *Error `json:"error"`
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	env := envelope[T]{IsSuccess: r.ok, Error: r.Err()}
	if r.ok {
		v := r.value
		env.Value = &v
	}
	return json.Marshal(env)
}

func (r *Result[T]) UnmarshalJSON(data []byte) error {
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch {
	case env.IsSuccess && env.Error != nil:
		return errors.New("result: envelope has both value and error")
	case env.IsSuccess:
		var v T
		if env.Value != nil {
			v = *env.Value
		}
		*r = Success(v)
	case env.Error != nil:
		*r = Failure[T](env.Error.Code, env.Error.Message)
	default:
		return errors.New("result: envelope has neither value nor error")
	}
	return nil
}
