package gsx

import (
	"fmt"
	"go/scanner"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// parser finds markup in Go source. Go regions are tokenized with
// go/scanner so strings, runes and comments never hide or fake a tag; tags
// are read by hand.
type parser struct {
	filename string
	src      string
	lines    *lineTable
}

func newParser(filename, src string) *parser {
	return &parser{filename: filename, src: src, lines: newLineTable(src)}
}

func (p *parser) errorf(off int, format string, args ...any) *SyntaxError {
	line, col := p.bytePosition(off)
	return &SyntaxError{Filename: p.filename, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

// bytePosition returns the 1-based line and byte column of off.
func (p *parser) bytePosition(off int) (line, col int) {
	l := p.lines.line(off)
	return l + 1, off - p.lines.starts[l] + 1
}

// parseGo scans Go source starting at start. With inBraces the run ends
// at the '}' balancing a '{' the caller consumed; otherwise it ends at the
// end of input.
func (p *parser) parseGo(start int, inBraces bool) (*GoCode, error) {
	code := &GoCode{Span: Span{Start: start}}
	last := start
	prev := token.SEMICOLON
	if inBraces {
		prev = token.LBRACE
	}
	depth := 0
	off := start

restart:
	for {
		var (
			s       scanner.Scanner
			scanErr *SyntaxError
			base    = off
		)
		file := token.NewFileSet().AddFile(p.filename, -1, len(p.src)-base)
		s.Init(file, []byte(p.src[base:]), func(pos token.Position, msg string) {
			if scanErr == nil {
				scanErr = p.errorf(base+pos.Offset, "%s", msg)
			}
		}, scanner.ScanComments)

		for {
			pos, tok, lit := s.Scan()
			if scanErr != nil {
				return nil, scanErr
			}
			at := base + file.Offset(pos)

			switch tok {
			case token.EOF:
				if inBraces {
					return nil, p.errorf(start-1, "unterminated {")
				}
				code.Stop = len(p.src)
				code.Src = p.src[start:code.Stop]
				code.last = last
				return code, nil
			case token.COMMENT:
				continue
			case token.SEMICOLON:
				if lit == "\n" {
					prev = token.SEMICOLON
					continue
				}
			case token.LBRACE:
				depth++
			case token.RBRACE:
				if depth == 0 && inBraces {
					code.Stop = at
					code.Src = p.src[start:at]
					code.last = last
					return code, nil
				}
				depth--
			case token.LSS:
				if exprStart(prev) && p.markupAt(at) {
					m, err := p.parseMarkup(at)
					if err != nil {
						return nil, err
					}
					code.Markup = append(code.Markup, m)
					code.Tokens++
					last = m.End()
					prev = token.RPAREN
					off = m.End()
					continue restart
				}
			}

			code.Tokens++
			prev = tok
			if lit != "" {
				last = at + len(lit)
			} else {
				last = at + len(tok.String())
			}
		}
	}
}

// exprStart reports whether an operand may start after prev, which is
// where '<' opens markup instead of comparing.
func exprStart(prev token.Token) bool {
	switch prev {
	case token.IDENT, token.INT, token.FLOAT, token.IMAG, token.CHAR, token.STRING,
		token.RPAREN, token.RBRACK, token.RBRACE, token.INC, token.DEC:
		return false
	case token.RETURN, token.CASE:
		return true
	}
	return !prev.IsKeyword()
}

// markupAt reports whether the '<' at off is followed by a tag name or '>'.
func (p *parser) markupAt(off int) bool {
	if off+1 >= len(p.src) {
		return false
	}
	if p.src[off+1] == '>' {
		return true
	}
	r, _ := utf8.DecodeRuneInString(p.src[off+1:])
	return r == '_' || unicode.IsLetter(r)
}

// parseMarkup parses the element or fragment starting at the '<' at off.
func (p *parser) parseMarkup(off int) (Markup, error) {
	i := off + 1
	if p.at(i) == '>' {
		f := &Fragment{Span: Span{Start: off}}
		children, closeAt, end, err := p.parseChildren(off, i+1, "")
		if err != nil {
			return nil, err
		}
		f.Children, f.Close, f.Stop = children, closeAt, end
		return f, nil
	}

	name, i := p.readName(i, true)
	if name == "" {
		return nil, p.errorf(i, "expected element name")
	}
	el := &Element{Span: Span{Start: off}, Name: name}

	for {
		i = p.skipSpace(i)
		switch c := p.at(i); c {
		case 0:
			return nil, p.errorf(off, "unterminated <%s>", name)
		case '/':
			if p.at(i+1) != '>' {
				return nil, p.errorf(i, "expected /> in <%s>", name)
			}
			el.SelfClosing = true
			el.Close = i
			el.OpenEnd = i + 2
			el.Stop = i + 2
			return el, nil
		case '>':
			el.OpenEnd = i + 1
			children, closeAt, end, err := p.parseChildren(off, i+1, name)
			if err != nil {
				return nil, err
			}
			el.Children, el.Close, el.Stop = children, closeAt, end
			return el, nil
		case '{':
			attr, err := p.parseSpread(i)
			if err != nil {
				return nil, err
			}
			el.Attrs = append(el.Attrs, attr)
			i = attr.Stop
		default:
			attr, err := p.parseAttr(i, name)
			if err != nil {
				return nil, err
			}
			el.Attrs = append(el.Attrs, attr)
			i = attr.Stop
		}
	}
}

func (p *parser) parseSpread(open int) (*SpreadAttr, error) {
	j := p.skipSpace(open + 1)
	if !strings.HasPrefix(p.src[j:], "...") {
		return nil, p.errorf(j, "expected ... in spread attribute")
	}
	code, err := p.parseGo(j+3, true)
	if err != nil {
		return nil, err
	}
	if code.Empty() {
		return nil, p.errorf(open, "spread attribute needs an expression")
	}
	return &SpreadAttr{Span: Span{Start: open, Stop: code.Stop + 1}, Code: code}, nil
}

func (p *parser) parseAttr(i int, tag string) (*NamedAttr, error) {
	name, j := p.readName(i, false)
	if name == "" {
		r, _ := utf8.DecodeRuneInString(p.src[i:])
		return nil, p.errorf(i, "unexpected %q in <%s>", r, tag)
	}
	attr := &NamedAttr{Span: Span{Start: i, Stop: j}, Name: name}

	k := p.skipSpace(j)
	if p.at(k) != '=' {
		return attr, nil
	}
	k = p.skipSpace(k + 1)

	switch q := p.at(k); q {
	case '"', '\'':
		end := strings.IndexByte(p.src[k+1:], q)
		if end < 0 {
			return nil, p.errorf(k, "unterminated string in attribute %s", name)
		}
		attr.Value = &StringLit{Span: Span{Start: k, Stop: k + end + 2}, Raw: p.src[k+1 : k+1+end]}
	case '{':
		code, err := p.parseGo(k+1, true)
		if err != nil {
			return nil, err
		}
		if code.Empty() {
			return nil, p.errorf(k, "attribute %s needs a non-empty expression", name)
		}
		attr.Value = &ExprContainer{Span: Span{Start: k, Stop: code.Stop + 1}, Code: code}
	case '<':
		if !p.markupAt(k) {
			return nil, p.errorf(k, "expected element as value of attribute %s", name)
		}
		m, err := p.parseMarkup(k)
		if err != nil {
			return nil, err
		}
		attr.Value = m
	default:
		return nil, p.errorf(k, "expected value for attribute %s", name)
	}
	attr.Stop = attr.Value.End()
	return attr, nil
}

// parseChildren parses children up to the closing tag of name ("" for a
// fragment). It returns the offset of the closing tag and the offset just
// past it.
func (p *parser) parseChildren(open, i int, name string) ([]Node, int, int, error) {
	var children []Node
	for {
		switch p.at(i) {
		case 0:
			if name == "" {
				return nil, 0, 0, p.errorf(open, "unclosed <>")
			}
			return nil, 0, 0, p.errorf(open, "unclosed <%s>", name)
		case '<':
			if p.at(i+1) == '/' {
				closeName, j := p.readName(p.skipSpace(i+2), true)
				j = p.skipSpace(j)
				if p.at(j) != '>' {
					return nil, 0, 0, p.errorf(j, "expected > in closing tag")
				}
				if closeName != name {
					return nil, 0, 0, p.errorf(i, "expected </%s>, found </%s>", name, closeName)
				}
				return children, i, j + 1, nil
			}
			if !p.markupAt(i) {
				return nil, 0, 0, p.errorf(i, "unexpected < in text, write {\"<\"}")
			}
			m, err := p.parseMarkup(i)
			if err != nil {
				return nil, 0, 0, err
			}
			children = append(children, m)
			i = m.End()
		case '{':
			code, err := p.parseGo(i+1, true)
			if err != nil {
				return nil, 0, 0, err
			}
			children = append(children, &ExprContainer{Span: Span{Start: i, Stop: code.Stop + 1}, Code: code})
			i = code.Stop + 1
		case '}':
			return nil, 0, 0, p.errorf(i, "unexpected } in text, write {\"}\"}")
		default:
			j := i
			for j < len(p.src) && p.src[j] != '<' && p.src[j] != '{' && p.src[j] != '}' {
				j++
			}
			children = append(children, &Text{Span: Span{Start: i, Stop: j}, Raw: p.src[i:j]})
			i = j
		}
	}
}

// at returns the byte at i, or 0 past the end.
func (p *parser) at(i int) byte {
	if i >= len(p.src) {
		return 0
	}
	return p.src[i]
}

func (p *parser) skipSpace(i int) int {
	for i < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}

// readName reads a tag name (letters, digits, '_', '-', ':' and, for
// elements, '.') or an attribute name.
func (p *parser) readName(i int, element bool) (string, int) {
	start := i
	for i < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[i:])
		ok := r == '_' || unicode.IsLetter(r)
		if i > start {
			ok = ok || unicode.IsDigit(r) || r == '-' || r == ':' || (element && r == '.')
		}
		if !ok {
			break
		}
		i += size
	}
	return p.src[start:i], i
}
