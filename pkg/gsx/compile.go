package gsx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/format"
	goparser "go/parser"
	"go/scanner"
	"go/token"
	"path/filepath"
	"strconv"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// RuntimeImport is the package compiled files call into.
	RuntimeImport = "github.com/vango-dev/hyperdom/pkg/hyper"

	// RuntimeName is the name RuntimeImport is imported as. It is
	// reserved in .gsx files.
	RuntimeName = "h"

	// Ext is the extension of source files.
	Ext = ".gsx"
)

var tracer trace.Tracer = otel.Tracer("github.com/vango-dev/hyperdom/pkg/gsx")

// Options configures compilation.
type Options struct {
	// Header starts the output with a "Code generated" comment and a
	// //line directive pointing back at the source.
	Header bool

	// Format runs gofmt over the output. Formatting moves lines, so no
	// source map is produced and no //line directive is written.
	Format bool
}

// Result is a compiled file.
type Result struct {
	Code []byte

	// Map is nil when Options.Format is set.
	Map *SourceMap

	// Markup is the number of elements and fragments lowered.
	Markup int
}

// Compile lowers the markup in a .gsx file to hyper.H calls and returns a
// Go file. The import of RuntimeImport is added when the file has markup.
func Compile(src []byte, filename string, opts Options) (*Result, error) {
	return CompileContext(context.Background(), src, filename, opts)
}

// CompileContext is Compile with a trace span parented on ctx.
func CompileContext(ctx context.Context, src []byte, filename string, opts Options) (res *Result, err error) {
	_, span := tracer.Start(ctx, "gsx.Compile",
		trace.WithAttributes(attribute.String("gsx.file", filename)),
	)
	defer span.End()

	start := time.Now()
	res, err = compile(src, filename, opts)

	markup := 0
	if res != nil {
		markup = res.Markup
		span.SetAttributes(attribute.Int("gsx.markup", markup))
	}
	observeCompile(time.Since(start), markup, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func compile(src []byte, filename string, opts Options) (*Result, error) {
	p := newParser(filename, string(src))
	code, err := p.parseGo(0, false)
	if err != nil {
		return nil, err
	}

	e := newEmitter(p)
	if opts.Header && !opts.Format {
		e.write(fmt.Sprintf("// Code generated by hyperc from %s. DO NOT EDIT.\n", filepath.Base(filename)))
		e.write(fmt.Sprintf("//line %s:1\n", filename))
		e.shift = e.line
	}

	pos := 0
	if len(code.Markup) > 0 {
		at, needed, err := p.importPoint()
		if err != nil {
			return nil, err
		}
		if needed {
			e.copySrc(0, at)
			e.write("; import " + RuntimeName + " " + strconv.Quote(RuntimeImport))
			pos = at
		}
	}
	rest := *code
	rest.Start = pos
	if err := e.emitGo(&rest, false); err != nil {
		return nil, err
	}

	out := e.buf.Bytes()
	if _, err := goparser.ParseFile(token.NewFileSet(), filename, out, goparser.SkipObjectResolution); err != nil {
		return nil, e.sourceError(err)
	}

	res := &Result{Code: out, Markup: countMarkup(code)}
	if opts.Format {
		formatted, err := format.Source(out)
		if err != nil {
			return nil, e.sourceError(err)
		}
		if opts.Header {
			formatted = append([]byte(fmt.Sprintf("// Code generated by hyperc from %s. DO NOT EDIT.\n\n", filepath.Base(filename))), formatted...)
		}
		res.Code = formatted
		return res, nil
	}
	res.Map = e.sourceMap(filename, p.src)
	return res, nil
}

// importPoint returns the offset just past the package name, and whether
// the runtime still has to be imported there.
func (p *parser) importPoint() (int, bool, error) {
	var s scanner.Scanner
	file := token.NewFileSet().AddFile(p.filename, -1, len(p.src))
	s.Init(file, []byte(p.src), nil, 0)

	_, tok, _ := s.Scan()
	if tok != token.PACKAGE {
		return 0, false, p.errorf(0, "expected package clause")
	}
	pos, tok, lit := s.Scan()
	if tok != token.IDENT {
		return 0, false, p.errorf(file.Offset(pos), "expected package name")
	}
	at := file.Offset(pos) + len(lit)

	f, err := goparser.ParseFile(token.NewFileSet(), p.filename, p.src, goparser.ImportsOnly)
	if err != nil {
		return 0, false, p.goError(err)
	}
	for _, imp := range f.Imports {
		if imp.Name == nil || imp.Name.Name != RuntimeName {
			continue
		}
		if path, _ := strconv.Unquote(imp.Path.Value); path == RuntimeImport {
			return at, false, nil
		}
		return 0, false, p.errorf(int(imp.Pos())-1, "import name %s is reserved for %s", RuntimeName, RuntimeImport)
	}
	return at, true, nil
}

// goError converts a go/parser error on the .gsx source itself into a
// SyntaxError.
func (p *parser) goError(err error) *SyntaxError {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		line, col := p.bytePosition(list[0].Pos.Offset)
		return &SyntaxError{Filename: p.filename, Line: line, Column: col, Msg: list[0].Msg, Err: err}
	}
	return &SyntaxError{Filename: p.filename, Line: 1, Column: 1, Msg: err.Error(), Err: err}
}

// sourceError converts a go/parser or go/format error on the generated
// code into a SyntaxError positioned in the source. The offset into the
// generated code is mapped back through the segments, so neither the
// header nor the expansion of markup moves the reported column.
func (e *emitter) sourceError(err error) *SyntaxError {
	var list scanner.ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return &SyntaxError{Filename: e.p.filename, Line: 1, Column: 1, Msg: err.Error(), Err: err}
	}
	first := list[0]
	line, col := e.p.bytePosition(e.sourceOffset(first.Pos.Offset))
	return &SyntaxError{Filename: e.p.filename, Line: line, Column: col, Msg: first.Msg, Err: err}
}

// sourceOffset maps a byte offset in the generated code to a byte offset
// in the source. Columns past the last segment on a line advance through
// the source from that segment and stop at the end of the source line.
func (e *emitter) sourceOffset(off int) int {
	out := e.buf.Bytes()
	if off > len(out) {
		off = len(out)
	}
	genLine := bytes.Count(out[:off], []byte{'\n'})
	lineStart := bytes.LastIndexByte(out[:off], '\n') + 1
	genCol := utf16Len(string(out[lineStart:off]))

	srcLine, srcCol := genLine-e.shift, 0
	if genLine < len(e.segments) {
		for _, s := range e.segments[genLine] {
			if s.genCol > genCol {
				break
			}
			srcLine, srcCol = s.srcLine, s.srcCol+genCol-s.genCol
		}
	}

	starts := e.p.lines.starts
	if srcLine < 0 {
		return 0
	}
	if srcLine >= len(starts) {
		return len(e.p.src)
	}
	end := len(e.p.src)
	if srcLine+1 < len(starts) {
		end = starts[srcLine+1] - 1
	}
	pos := starts[srcLine]
	for n := 0; n < srcCol && pos < end; {
		r, size := utf8.DecodeRuneInString(e.p.src[pos:end])
		pos += size
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return pos
}

// countMarkup counts the elements and fragments in code, nested ones
// included.
func countMarkup(code *GoCode) int {
	n := 0
	for _, m := range code.Markup {
		n += countNode(m)
	}
	return n
}

func countNode(node Node) int {
	switch node := node.(type) {
	case *Element:
		n := 1
		for _, a := range node.Attrs {
			switch a := a.(type) {
			case *SpreadAttr:
				n += countMarkup(a.Code)
			case *NamedAttr:
				if a.Value != nil {
					n += countNode(a.Value)
				}
			}
		}
		for _, c := range node.Children {
			n += countNode(c)
		}
		return n
	case *Fragment:
		n := 1
		for _, c := range node.Children {
			n += countNode(c)
		}
		return n
	case *ExprContainer:
		return countMarkup(node.Code)
	}
	return 0
}
