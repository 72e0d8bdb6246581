package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// colorEnabled controls whether Format emits ANSI colors.
var colorEnabled = true

func DisableColors() { colorEnabled = false }
func EnableColors()  { colorEnabled = true }

func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string  { return color(colorRed, text) }
func cyan(text string) string { return color(colorCyan, text) }
func gray(text string) string { return color(colorGray, text) }
func bold(text string) string { return color(colorBold, text) }

// Format renders the diagnostic for a terminal.
func (d *Diagnostic) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if d.Code != "" {
		b.WriteString(red(bold("ERROR " + d.Code + ": ")))
	} else {
		b.WriteString(red(bold("ERROR: ")))
	}
	b.WriteString(d.Message)
	b.WriteString("\n\n")

	if d.Location != nil {
		b.WriteString("  " + cyan(d.Location.String()) + "\n\n")
		if len(d.Context) > 0 {
			d.writeContext(&b)
			b.WriteString("\n")
		}
	}

	if d.Detail != "" {
		for _, line := range wrapText(d.Detail, 70) {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}

	if d.Suggestion != "" {
		b.WriteString("  " + cyan("Hint: ") + d.Suggestion + "\n\n")
	}
	return b.String()
}

func (d *Diagnostic) writeContext(b *strings.Builder) {
	for i, line := range d.Context {
		n := d.ContextStart + i
		if n != d.Location.Line {
			fmt.Fprintf(b, "    %4d%s%s\n", n, gray(" │ "), line)
			continue
		}
		fmt.Fprintf(b, "  %s%4d%s%s\n", red("→ "), n, gray(" │ "), line)
		if d.Location.Column > 0 {
			b.WriteString("       " + gray("│ "))
			b.WriteString(indentLike(line, d.Location.Column-1))
			b.WriteString(red("^") + "\n")
		}
	}
}

// indentLike returns n columns of padding, keeping the tabs of line so
// the caret lines up with the byte column.
func indentLike(line string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i < len(line) && line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// FormatCompact renders the diagnostic on one line, like compiler output.
func (d *Diagnostic) FormatCompact() string {
	return d.Error()
}

type jsonDiagnostic struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
}

// FormatJSON renders the diagnostic as a JSON object, for editors and the
// dev server's reload messages.
func (d *Diagnostic) FormatJSON() string {
	data, _ := json.Marshal(jsonDiagnostic{
		Code:       d.Code,
		Category:   d.Category,
		Message:    d.Message,
		Detail:     d.Detail,
		Location:   d.Location,
		Suggestion: d.Suggestion,
	})
	return string(data)
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var (
		lines   []string
		current strings.Builder
	)
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}

// Print writes err to w, formatted when it is a Diagnostic.
func Print(w io.Writer, err error) {
	if d, ok := err.(*Diagnostic); ok {
		fmt.Fprint(w, d.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", red(bold("ERROR:")), err)
}
