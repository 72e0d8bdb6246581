package gsx

import "fmt"

// SyntaxError reports malformed markup or generated code that does not
// parse. Line and Column are 1-based positions in the .gsx source.
type SyntaxError struct {
	Filename string
	Line     int
	Column   int
	Msg      string

	// Err is the go/scanner or go/parser error behind the report, if any.
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
