package errors

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/vango-dev/hyperdom/pkg/gsx"
)

// Category groups diagnostics by the stage that raised them.
type Category string

const (
	CategorySyntax Category = "syntax"
	CategoryConfig Category = "config"
	CategoryWatch  Category = "watch"
	CategoryCLI    Category = "cli"
)

// contextLines is how many source lines a diagnostic shows around its
// location.
const contextLines = 5

// Location is a 1-based position in a source file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Diagnostic is an error reported by hyperc, with the source around it
// and a hint for fixing it.
type Diagnostic struct {
	// Code identifies the kind of diagnostic, e.g. "G001".
	Code     string
	Category Category
	Message  string
	Detail   string
	Location *Location

	// Context holds the source lines around Location, starting at
	// ContextStart.
	Context      []string
	ContextStart int

	Suggestion string
	Wrapped    error
}

func (d *Diagnostic) Error() string {
	msg := d.Message
	if d.Code != "" {
		msg = d.Code + ": " + msg
	}
	if d.Location != nil {
		msg = d.Location.String() + ": " + msg
	}
	return msg
}

func (d *Diagnostic) Unwrap() error {
	return d.Wrapped
}

// WithLocation sets the location and reads the context lines from disk.
func (d *Diagnostic) WithLocation(file string, line, column int) *Diagnostic {
	d.Location = &Location{File: file, Line: line, Column: column}
	if f, err := os.Open(file); err == nil {
		defer f.Close()
		d.Context, d.ContextStart = readContext(bufio.NewScanner(f), line)
	}
	return d
}

// WithSource sets the location and takes the context lines from src.
func (d *Diagnostic) WithSource(file string, src []byte, line, column int) *Diagnostic {
	d.Location = &Location{File: file, Line: line, Column: column}
	d.Context, d.ContextStart = readContext(bufio.NewScanner(bytes.NewReader(src)), line)
	return d
}

func (d *Diagnostic) WithSuggestion(s string) *Diagnostic {
	d.Suggestion = s
	return d
}

func (d *Diagnostic) WithDetail(s string) *Diagnostic {
	d.Detail = s
	return d
}

func (d *Diagnostic) Wrap(err error) *Diagnostic {
	d.Wrapped = err
	return d
}

func readContext(s *bufio.Scanner, target int) ([]string, int) {
	start := max(target-contextLines/2, 1)
	end := target + contextLines/2

	var lines []string
	for n := 1; s.Scan() && n <= end; n++ {
		if n >= start {
			lines = append(lines, s.Text())
		}
	}
	return lines, start
}

// New returns a diagnostic for a registered code.
func New(code string) *Diagnostic {
	t, ok := registry[code]
	if !ok {
		return &Diagnostic{Code: code, Message: "unknown error"}
	}
	return &Diagnostic{
		Code:       code,
		Category:   t.Category,
		Message:    t.Message,
		Detail:     t.Detail,
		Suggestion: t.Suggestion,
	}
}

// Newf returns an uncoded diagnostic.
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError converts err into a diagnostic. A *gsx.SyntaxError keeps its
// position and gets its context from src, which may be nil to read the
// file instead. Other errors are wrapped under code.
func FromError(err error, src []byte, code string) *Diagnostic {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d
	}

	var se *gsx.SyntaxError
	if !stderrors.As(err, &se) {
		d = New(code).Wrap(err)
		if d.Detail == "" {
			d.Detail = err.Error()
		}
		return d
	}

	d = New(syntaxCode(se))
	d.Message = se.Msg
	d.Wrapped = err
	if src != nil {
		return d.WithSource(se.Filename, src, se.Line, se.Column)
	}
	return d.WithLocation(se.Filename, se.Line, se.Column)
}

// syntaxCode picks the registered code for a compiler message.
func syntaxCode(se *gsx.SyntaxError) string {
	switch {
	case se.Err != nil:
		return "G002"
	case strings.Contains(se.Msg, "reserved"):
		return "G003"
	case strings.HasPrefix(se.Msg, "expected </"):
		return "G004"
	case strings.Contains(se.Msg, "ref"), strings.Contains(se.Msg, "handler"):
		return "G005"
	}
	return "G001"
}
