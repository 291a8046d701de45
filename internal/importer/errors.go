package importer

import (
	"errors"
	"fmt"
)

// ErrEmptyImport is returned when an upload contains no tabular data:
// an empty file, or an archive with zero CSV members.
var ErrEmptyImport = errors.New("import contains no tabular data")

// FormatError reports an upload that could not be parsed: malformed CSV
// syntax, an unreadable archive member, or an unparseable typed cell.
// Format errors are always fatal to the import.
type FormatError struct {
	File string
	Line int // 1-based, 0 when the error is not attributable to a row
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	default:
		return e.Msg
	}
}

func (e *FormatError) Unwrap() error { return e.Err }

func formatErrorf(file string, line int, format string, args ...any) *FormatError {
	return &FormatError{File: file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// CommitError reports a failure during the transactional commit. Step names
// the dependency-order step that failed; Key identifies the entity or
// natural key involved when known. Unresolved references at commit time
// indicate validation was bypassed, not user error.
type CommitError struct {
	Step string
	Key  string
	Err  error
}

func (e *CommitError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("commit %s: %q: %v", e.Step, e.Key, e.Err)
	}
	return fmt.Sprintf("commit %s: %v", e.Step, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
