package analysis

import (
	"errors"
	"net/http"
)

// Kind classifies analyze failures. Every failure the pipeline returns is an
// *Error carrying one of these kinds.
type Kind int

const (
	KindUnsupportedFormat Kind = iota + 1
	KindInsufficientInput
	KindDocumentParse
	KindMissingFile
	KindFileTooLarge
	KindConfiguration
	KindCompletion
)

// Status maps the kind to an HTTP status. Input problems are 4xx, service
// problems 5xx.
func (k Kind) Status() int {
	switch k {
	case KindUnsupportedFormat, KindInsufficientInput, KindDocumentParse, KindMissingFile:
		return http.StatusBadRequest
	case KindFileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Code is the machine-readable code placed in error bodies.
func (k Kind) Code() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindInsufficientInput:
		return "insufficient_input"
	case KindDocumentParse:
		return "document_parse_error"
	case KindMissingFile:
		return "missing_file"
	case KindFileTooLarge:
		return "file_too_large"
	case KindConfiguration:
		return "configuration_error"
	case KindCompletion:
		return "completion_error"
	default:
		return "internal_error"
	}
}

// ClientError reports whether the caller caused the failure.
func (k Kind) ClientError() bool {
	return k.Status() < http.StatusInternalServerError
}

// Error is a classified analyze failure. Detail is safe to show to clients.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// KindOf returns the kind of err, if err is or wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
