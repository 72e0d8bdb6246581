package memdom

import (
	"strings"
	"unicode"
)

// style edits the element's style attribute in place.
type style struct {
	el *Element
}

type declaration struct {
	name, value string
}

func (s *style) Set(name, value string) {
	s.SetProperty(cssName(name), value)
}

func (s *style) SetProperty(name, value string) {
	if !strings.HasPrefix(name, "--") {
		name = strings.ToLower(name)
	}
	value = strings.TrimSpace(value)

	decls := s.declarations()
	for i, d := range decls {
		if d.name == name {
			if value == "" {
				decls = append(decls[:i], decls[i+1:]...)
			} else {
				decls[i].value = value
			}
			s.write(decls)
			return
		}
	}
	if value == "" {
		return
	}
	s.write(append(decls, declaration{name: name, value: value}))
}

func (s *style) Get(name string) string {
	if !strings.HasPrefix(name, "--") {
		name = cssName(name)
	}
	for _, d := range s.declarations() {
		if d.name == name {
			return d.value
		}
	}
	return ""
}

func (s *style) declarations() []declaration {
	raw, _ := getAttr(s.el.n, "style")
	var decls []declaration
	for _, part := range splitDeclarations(raw) {
		name, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		decls = append(decls, declaration{name: name, value: strings.TrimSpace(value)})
	}
	return decls
}

// splitDeclarations splits a declaration list on the semicolons that are
// outside quotes, parentheses and escapes.
func splitDeclarations(raw string) []string {
	var (
		parts []string
		quote byte
		depth int
		start int
	)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case c == ';' && depth == 0:
			parts = append(parts, raw[start:i])
			start = i + 1
		}
	}
	return append(parts, raw[start:])
}

func (s *style) write(decls []declaration) {
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.name + ": " + d.value + ";"
	}
	setAttr(s.el.n, "style", strings.Join(parts, " "))
}

// cssName converts a camelCase style field to its CSS property name:
// backgroundColor becomes background-color, WebkitTransform becomes
// -webkit-transform.
func cssName(field string) string {
	if field == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for _, r := range field {
		if unicode.IsUpper(r) {
			sb.WriteByte('-')
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
