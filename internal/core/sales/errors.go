package sales

import (
	"errors"
	"fmt"
)

// ErrDataFormat is matched by every *DataFormatError via errors.Is.
var ErrDataFormat = errors.New("data format error")

// DataFormatError reports an unreadable source or a record that fails
// schema or date parsing. It is fatal at startup.
type DataFormatError struct {
	Source string
	Row    int    // 1-based record index; 0 when the whole source is unusable
	Field  string // offending field, if known
	Err    error
}

func (e *DataFormatError) Error() string {
	switch {
	case e.Row > 0 && e.Field != "":
		return fmt.Sprintf("%s: record %d: field %q: %v", e.Source, e.Row, e.Field, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("%s: record %d: %v", e.Source, e.Row, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
}

func (e *DataFormatError) Unwrap() error { return e.Err }

func (e *DataFormatError) Is(target error) bool { return target == ErrDataFormat }

// NewSourceError wraps a failure that makes the whole source unusable.
func NewSourceError(source string, err error) *DataFormatError {
	return &DataFormatError{Source: source, Err: err}
}

// NewFieldError wraps a failure on one field of one record.
func NewFieldError(source string, row int, field string, err error) *DataFormatError {
	return &DataFormatError{Source: source, Row: row, Field: field, Err: err}
}

// EmptyResultWarning marks a filter combination that matched zero records.
// It is never fatal: summaries degrade to empty and totals to zero.
type EmptyResultWarning struct {
	Region      string
	Year        *int
	Salespeople []string
}

// WarningEmptyResult is the machine-readable code surfaced to API clients.
const WarningEmptyResult = "empty_result"

func (w *EmptyResultWarning) Error() string {
	year := "all"
	if w.Year != nil {
		year = fmt.Sprintf("%d", *w.Year)
	}
	return fmt.Sprintf("no records match region=%q year=%s salespeople=%v", w.Region, year, w.Salespeople)
}

func (w *EmptyResultWarning) Code() string { return WarningEmptyResult }
