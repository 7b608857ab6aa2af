// Package apperr defines the typed errors shared by the inference adapters,
// the model registry and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for status-code mapping at the HTTP boundary.
type Kind int

const (
	// KindUnknown is the zero value; errors without a kind map to 500.
	KindUnknown Kind = iota
	InvalidImage
	InvalidParameter
	UnsupportedLanguage
	UnsupportedVersion
	UnknownModel
	UnknownJob
	AlreadyInstalled
	NotInstalled
	DownloadFailure
	InferenceFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidImage:
		return "invalid_image"
	case InvalidParameter:
		return "invalid_parameter"
	case UnsupportedLanguage:
		return "unsupported_language"
	case UnsupportedVersion:
		return "unsupported_version"
	case UnknownModel:
		return "unknown_model"
	case UnknownJob:
		return "unknown_job"
	case AlreadyInstalled:
		return "already_installed"
	case NotInstalled:
		return "not_installed"
	case DownloadFailure:
		return "download_failure"
	case InferenceFailure:
		return "inference_failure"
	default:
		return "unknown"
	}
}

// Error is a kinded error. It supports errors.As for kind extraction and
// errors.Unwrap for inspecting the underlying cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind carried by err, or KindUnknown when err was not
// produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
