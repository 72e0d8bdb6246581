package gsx

import (
	"bytes"
	"go/ast"
	goparser "go/parser"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// emitter writes the lowered program. Go source is copied verbatim and
// markup becomes nested H calls. The output keeps every source line on
// the same line number: newlines dropped while lowering a tag are written
// back at the next point where a line break cannot end a statement.
type emitter struct {
	p   *parser
	buf bytes.Buffer

	// line and col locate the write position; col counts UTF-16 units.
	line, col int
	// shift is how many generated lines precede source line 0.
	shift int

	segments [][]segment
}

// segment maps a generated column to a source position.
type segment struct {
	genCol, srcLine, srcCol int
}

func newEmitter(p *parser) *emitter {
	return &emitter{p: p, segments: make([][]segment, 1)}
}

func (e *emitter) write(s string) {
	e.buf.WriteString(s)
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			e.col += utf16Len(s)
			return
		}
		e.line++
		e.col = 0
		e.segments = append(e.segments, nil)
		s = s[i+1:]
	}
}

// mark maps the write position to the source offset off.
func (e *emitter) mark(off int) {
	line, col := e.p.lines.position(off)
	segs := e.segments[e.line]
	if n := len(segs); n > 0 && segs[n-1].genCol == e.col {
		segs[n-1] = segment{e.col, line, col}
		return
	}
	e.segments[e.line] = append(segs, segment{e.col, line, col})
}

// catchUp breaks lines until the output reaches source line srcLine. It
// must only be called right after "(", "{" or ",".
func (e *emitter) catchUp(srcLine int) {
	for e.line < srcLine+e.shift {
		e.write("\n")
	}
}

// copySrc copies source bytes verbatim, mapping the start of every line.
func (e *emitter) copySrc(start, end int) {
	for start < end {
		if e.p.src[start] != '\n' {
			e.mark(start)
		}
		i := strings.IndexByte(e.p.src[start:end], '\n')
		if i < 0 {
			e.write(e.p.src[start:end])
			return
		}
		e.write(e.p.src[start : start+i+1])
		start += i + 1
	}
}

// emitGo copies a run of Go source, lowering the markup inside it. With
// trim the run stops at its last token.
func (e *emitter) emitGo(code *GoCode, trim bool) error {
	end := code.Stop
	if trim {
		end = code.last
	}
	pos := code.Start
	for _, m := range code.Markup {
		e.copySrc(pos, m.Pos())
		if err := e.emitMarkup(m); err != nil {
			return err
		}
		pos = m.End()
	}
	e.copySrc(pos, end)
	return nil
}

func (e *emitter) emitMarkup(m Markup) error {
	switch m := m.(type) {
	case *Element:
		return e.emitElement(m)
	case *Fragment:
		e.mark(m.Start)
		e.write(RuntimeName + `.H("", nil, `)
		if err := e.emitChildren(m.Children, m.Close); err != nil {
			return err
		}
		e.write(")")
	}
	return nil
}

func (e *emitter) emitElement(el *Element) error {
	tag, err := e.tagExpr(el)
	if err != nil {
		return err
	}
	e.mark(el.Start)
	e.write(RuntimeName + ".H(")
	e.mark(el.Start + 1)
	e.write(tag)
	e.write(", ")
	if err := e.emitProps(el); err != nil {
		return err
	}
	e.write(", ")
	if err := e.emitChildren(el.Children, el.Close); err != nil {
		return err
	}
	e.write(")")
	return nil
}

// tagExpr renders the tag argument. Names starting with a character that
// has no distinct upper case, and dotted names, refer to Go components;
// everything else is an element tag.
func (e *emitter) tagExpr(el *Element) (string, error) {
	if !isComponent(el.Name) {
		return strconv.Quote(el.Name), nil
	}
	for _, part := range strings.Split(el.Name, ".") {
		if !isIdent(part) {
			return "", e.p.errorf(el.Start+1, "component name %s is not a Go identifier or selector", el.Name)
		}
	}
	return el.Name, nil
}

func isComponent(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.ToUpper(r) == r || strings.Contains(name, ".")
}

func isIdent(s string) bool {
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return s != "" && s != "_"
}

// propItem is one entry of the props literal.
type propItem struct {
	attr   Attr
	event  string
	breaks int
}

func (e *emitter) emitProps(el *Element) error {
	var items, events []propItem
	for _, a := range el.Attrs {
		item := propItem{attr: a, breaks: strings.Count(e.p.src[a.Pos():a.End()], "\n")}
		if na, ok := a.(*NamedAttr); ok && isEvent(na.Name) {
			if na.Value == nil {
				return e.p.errorf(na.Start, "event attribute %s needs a handler", na.Name)
			}
			item.event = strings.ToLower(na.Name[2:])
			events = append(events, item)
			continue
		}
		items = append(items, item)
	}
	nEvents := len(events)
	items = append(items, events...)

	// Events are emitted after attributes that may follow them in the
	// source, so a line catch-up may not run past the lines still to come.
	limits := make([]int, len(items))
	rest := 0
	tagEnd := e.p.lines.line(el.OpenEnd - 1)
	for i := len(items) - 1; i >= 0; i-- {
		rest += items[i].breaks
		limits[i] = min(e.p.lines.line(items[i].attr.Pos()), tagEnd-rest)
	}

	e.write(RuntimeName + ".Props{")
	for i, item := range items {
		firstEvent := i == len(items)-nEvents
		if i > 0 {
			e.write(", ")
		}
		if firstEvent {
			e.write(`{Key: "on", Value: ` + RuntimeName + ".Props{")
		}
		e.catchUp(limits[i])
		if err := e.emitProp(item); err != nil {
			return err
		}
	}
	if nEvents > 0 {
		e.write("}}")
	}
	e.write("}")
	return nil
}

// isEvent reports whether an attribute binds a listener: onclick, onClick
// and the like, but not a bare "on".
func isEvent(name string) bool {
	return strings.HasPrefix(name, "on") && name != "on"
}

func (e *emitter) emitProp(item propItem) error {
	switch a := item.attr.(type) {
	case *SpreadAttr:
		e.mark(a.Start)
		e.write(RuntimeName + ".Spread(")
		if err := e.emitGo(a.Code, true); err != nil {
			return err
		}
		e.write(")")
		return nil

	case *NamedAttr:
		key := a.Name
		if item.event != "" {
			key = item.event
		}
		e.mark(a.Start)
		e.write("{Key: " + strconv.Quote(key) + ", Value: ")
		var err error
		if a.Name == "ref" {
			err = e.emitRef(a)
		} else {
			err = e.emitValue(a.Value)
		}
		if err != nil {
			return err
		}
		e.write("}")
	}
	return nil
}

func (e *emitter) emitValue(v Node) error {
	switch v := v.(type) {
	case nil:
		e.write(RuntimeName + ".Null")
	case *StringLit:
		e.mark(v.Start)
		e.write(strconv.Quote(v.Raw))
	case *ExprContainer:
		return e.emitGo(v.Code, true)
	case Markup:
		return e.emitMarkup(v)
	}
	return nil
}

// emitRef passes a function literal through and turns any other
// expression into a callback assigning the node to it.
func (e *emitter) emitRef(a *NamedAttr) error {
	c, ok := a.Value.(*ExprContainer)
	if !ok {
		return e.p.errorf(a.Start, "ref needs an expression")
	}
	if len(c.Code.Markup) > 0 {
		return e.emitGo(c.Code, true)
	}

	src := e.p.src[c.Code.Start:c.Code.last]
	expr, err := goparser.ParseExpr(src)
	if err != nil {
		return e.p.errorf(c.Code.Start, "ref: %v", err)
	}
	if _, ok := expr.(*ast.FuncLit); ok {
		return e.emitGo(c.Code, true)
	}

	param := freeName(expr, "el")
	e.write("func(" + param + " " + RuntimeName + ".Node) { ")
	if err := e.emitGo(c.Code, true); err != nil {
		return err
	}
	e.write(" = " + param + " }")
	return nil
}

// freeName returns base, or base with a numeric suffix, such that no
// identifier in expr has that name.
func freeName(expr ast.Expr, base string) string {
	used := map[string]bool{}
	ast.Inspect(expr, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			used[id.Name] = true
		}
		return true
	})
	name := base
	for i := 1; used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	return name
}

func (e *emitter) emitChildren(children []Node, closeAt int) error {
	e.write(RuntimeName + ".Children{")
	n := 0
	for _, c := range children {
		switch c := c.(type) {
		case *Text:
			start := strings.IndexFunc(c.Raw, func(r rune) bool { return !unicode.IsSpace(r) })
			if start < 0 {
				continue
			}
			e.separate(n, c.Start+start)
			e.mark(c.Start)
			e.write(strconv.Quote(c.Raw))
		case *ExprContainer:
			if c.Code.Empty() {
				continue
			}
			e.separate(n, c.Start)
			if err := e.emitGo(c.Code, true); err != nil {
				return err
			}
		case Markup:
			e.separate(n, c.Pos())
			if err := e.emitMarkup(c); err != nil {
				return err
			}
		}
		n++
	}
	if closeLine := e.p.lines.line(closeAt); e.line < closeLine+e.shift {
		if n > 0 {
			e.write(",")
		}
		e.catchUp(closeLine)
	}
	e.write("}")
	return nil
}

func (e *emitter) separate(n, off int) {
	if n > 0 {
		e.write(", ")
	}
	e.catchUp(e.p.lines.line(off))
}
