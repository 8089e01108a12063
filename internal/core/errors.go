package core

import (
	"errors"
	"fmt"
)

// Recognized failure kinds of a render cycle.
var (
	ErrFileMissing     = errors.New("source file missing")
	ErrMalformedInput  = errors.New("malformed input")
	ErrMalformedRecord = errors.New("malformed record")
)

// Kind labels used in logs, the render journal and the JSON API.
const (
	KindFileMissing     = "file_missing"
	KindMalformedInput  = "malformed_input"
	KindMalformedRecord = "malformed_record"
	KindInternal        = "internal"
)

// RecordError describes which element of the input array could not be used.
type RecordError struct {
	Index int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d: field %q: %v", e.Index, e.Field, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is makes every RecordError match ErrMalformedRecord.
func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// Kind maps an error to its label. A nil error has no kind.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFileMissing):
		return KindFileMissing
	case errors.Is(err, ErrMalformedInput):
		return KindMalformedInput
	case errors.Is(err, ErrMalformedRecord):
		return KindMalformedRecord
	default:
		return KindInternal
	}
}

// UserMessage returns the single human-readable message shown instead of the report.
func UserMessage(err error, source string) string {
	switch Kind(err) {
	case KindFileMissing:
		return source + " file not found. Please make sure the file exists in the configured location."
	case KindMalformedInput:
		return "Error reading the JSON file. Please check if the file format is correct."
	case KindMalformedRecord:
		var re *RecordError
		if errors.As(err, &re) {
			return "The JSON file contains an invalid entry (" + re.Error() + "). Please fix it and reload."
		}
		return "The JSON file contains an invalid entry. Please fix it and reload."
	default:
		return "The report could not be generated."
	}
}
