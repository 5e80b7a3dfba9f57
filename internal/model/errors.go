package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed run.
type ErrorKind string

const (
	KindUnknown             ErrorKind = "Unknown"
	KindFileTooLarge        ErrorKind = "FileTooLarge"
	KindFileNotFound        ErrorKind = "FileNotFound"
	KindUnsupportedFileType ErrorKind = "UnsupportedFileType"
	KindWontOverwrite       ErrorKind = "WontOverwrite"
	KindNotSmaller          ErrorKind = "NotSmaller"
	KindImageResizeError    ErrorKind = "ImageResizeError"
	KindInvalidHexColor     ErrorKind = "InvalidHexColor"
)

// Error is a pipeline failure tagged with its kind.
type Error struct {
	Kind ErrorKind
	Err  error
}

// NewError tags err with kind. A nil err yields nil.
func NewError(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Errorf formats a message and tags it with kind.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost tagged error in err's chain, or
// KindUnknown when none is tagged.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
