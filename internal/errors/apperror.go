package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies failures so the route layer can map them to status codes without guessing
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
	KindUnknown    Kind = "unknown"
)

// AppError carries the kind plus the offending field or id
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	ID      string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Field != "" {
		fmt.Fprintf(&b, " (field=%s)", e.Field)
	}
	if e.ID != "" {
		fmt.Fprintf(&b, " (id=%s)", e.ID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors of the same kind and code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

// Validation builds a 400-class error; fields maps field name to reason
func Validation(code, message string, fields map[string]string) *AppError {
	e := &AppError{Kind: KindValidation, Code: code, Message: message, Fields: fields}
	if len(fields) == 1 {
		for k := range fields {
			e.Field = k
		}
	}
	return e
}

// MissingFields reports every missing field at once, sorted for stable output
func MissingFields(names []string) *AppError {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	fields := make(map[string]string, len(sorted))
	for _, n := range sorted {
		fields[n] = "required"
	}
	e := Validation(ValidationRequired, "missing required fields: "+strings.Join(sorted, ", "), fields)
	return e
}

func NotFoundError(code, message, id string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: message, ID: id}
}

func Conflict(code, message, field string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message, Field: field}
}

// Storage wraps an underlying store failure; op names the aborted operation
func Storage(op string, err error) *AppError {
	return &AppError{
		Kind:    KindStorage,
		Code:    InternalDatabaseError,
		Message: op + " failed, no changes were committed",
		Err:     err,
	}
}

func Unknown(err error) *AppError {
	return &AppError{Kind: KindUnknown, Code: InternalServerError, Message: "unexpected error", Err: err}
}

// KindOf returns the kind of err, KindUnknown for unclassified errors
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
