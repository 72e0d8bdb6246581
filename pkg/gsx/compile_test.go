package gsx

import (
	"errors"
	goparser "go/parser"
	"go/token"
	"strings"
	"testing"
)

const importLine = `package p; import h "github.com/vango-dev/hyperdom/pkg/hyper"`

func compileString(t *testing.T, src string) string {
	t.Helper()
	res, err := Compile([]byte(src), "x.gsx", Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return string(res.Code)
}

func TestLowering(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{
			name: "attributes and events",
			expr: `<div className="a" onClick={f}>hi</div>`,
			want: `h.H("div", h.Props{{Key: "className", Value: "a"}, {Key: "on", Value: h.Props{{Key: "click", Value: f}}}}, h.Children{"hi"})`,
		},
		{
			name: "events go last in source order",
			expr: `<a onMouseOver={g} href="/" onclick={f}/>`,
			want: `h.H("a", h.Props{{Key: "href", Value: "/"}, {Key: "on", Value: h.Props{{Key: "mouseover", Value: g}, {Key: "click", Value: f}}}}, h.Children{})`,
		},
		{
			name: "bare on is an attribute",
			expr: `<x-el on={m}/>`,
			want: `h.H("x-el", h.Props{{Key: "on", Value: m}}, h.Children{})`,
		},
		{
			name: "fragment and components",
			expr: `<><Foo a /><pkg.Bar/></>`,
			want: `h.H("", nil, h.Children{h.H(Foo, h.Props{{Key: "a", Value: h.Null}}, h.Children{}), h.H(pkg.Bar, h.Props{}, h.Children{})})`,
		},
		{
			name: "underscore names a component",
			expr: `<_item/>`,
			want: `h.H(_item, h.Props{}, h.Children{})`,
		},
		{
			name: "raw text is quoted",
			expr: `<p>it's "x"</p>`,
			want: `h.H("p", h.Props{}, h.Children{"it's \"x\""})`,
		},
		{
			name: "whitespace text and empty expressions are dropped",
			expr: `<p> {/* note */} {a}{b} </p>`,
			want: `h.H("p", h.Props{}, h.Children{a, b})`,
		},
		{
			name: "spread",
			expr: `<div {...rest} id='x'/>`,
			want: `h.H("div", h.Props{h.Spread(rest), {Key: "id", Value: "x"}}, h.Children{})`,
		},
		{
			name: "ref assignment",
			expr: `<div ref={node}/>`,
			want: `h.H("div", h.Props{{Key: "ref", Value: func(el h.Node) { node = el }}}, h.Children{})`,
		},
		{
			name: "ref avoids captured names",
			expr: `<div ref={refs[el]}/>`,
			want: `h.H("div", h.Props{{Key: "ref", Value: func(el1 h.Node) { refs[el] = el1 }}}, h.Children{})`,
		},
		{
			name: "ref function literal",
			expr: `<div ref={func(n h.Node) { keep(n) }}/>`,
			want: `h.H("div", h.Props{{Key: "ref", Value: func(n h.Node) { keep(n) }}}, h.Children{})`,
		},
		{
			name: "markup as attribute value",
			expr: `<Card icon=<Icon/> />`,
			want: `h.H(Card, h.Props{{Key: "icon", Value: h.H(Icon, h.Props{}, h.Children{})}}, h.Children{})`,
		},
		{
			name: "markup inside an expression",
			expr: `<ul>{each(items, func(s string) h.Node { return <li>{s}</li> })}</ul>`,
			want: `h.H("ul", h.Props{}, h.Children{each(items, func(s string) h.Node { return h.H("li", h.Props{}, h.Children{s}) })})`,
		},
		{
			name: "trailing comment in an expression",
			expr: `<p title={t /* title */}/>`,
			want: `h.H("p", h.Props{{Key: "title", Value: t}}, h.Children{})`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compileString(t, "package p\n\nvar x = "+tt.expr+"\n")
			want := importLine + "\n\nvar x = " + tt.want + "\n"
			if got != want {
				t.Errorf("got\n%s\nwant\n%s", got, want)
			}
		})
	}
}

func TestComparisonIsNotMarkup(t *testing.T) {
	src := "package p\n\nfunc less(a, b int) bool { return a < b }\n\nvar ok = len(s) <x\n"
	res, err := Compile([]byte(src), "x.gsx", Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if string(res.Code) != src {
		t.Errorf("plain Go should pass through unchanged, got\n%s", res.Code)
	}
	if res.Markup != 0 {
		t.Errorf("expected no markup, got %d", res.Markup)
	}
}

func TestStringsAndCommentsHideTags(t *testing.T) {
	src := "package p\n\nvar s = \"<div>\" // <span>\nvar r = '<'\n"
	if got := compileString(t, src); got != src {
		t.Errorf("got\n%s", got)
	}
}

func TestLinesStayAligned(t *testing.T) {
	src := `package p

func View(items []string, f func()) h.Node {
	return <ul
		onClick={f}
		class="list"
	>
		<li>
			first
		</li>
		{render(
			items,
		)}
	</ul>
}
`
	got := compileString(t, src)
	srcLines := strings.Split(src, "\n")
	gotLines := strings.Split(got, "\n")
	if len(gotLines) != len(srcLines) {
		t.Fatalf("got %d lines, want %d:\n%s", len(gotLines), len(srcLines), got)
	}
	for _, probe := range []string{"func View", `"class"`, "first", "items,"} {
		for i, line := range srcLines {
			if strings.Contains(line, strings.Trim(probe, `"`)) && !strings.Contains(gotLines[i], probe) {
				t.Errorf("line %d: %s not found in %q", i+1, probe, gotLines[i])
			}
		}
	}
	if _, err := goparser.ParseFile(token.NewFileSet(), "x.go", got, 0); err != nil {
		t.Errorf("output does not parse: %v", err)
	}
}

func TestMultilineChildrenClose(t *testing.T) {
	src := "package p\n\nvar x = <ul>\n\t<li>{n}</li>\n</ul>\n"
	want := importLine + "\n\nvar x = h.H(\"ul\", h.Props{}, h.Children{\nh.H(\"li\", h.Props{}, h.Children{n}),\n})\n"
	if got := compileString(t, src); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestImportInjection(t *testing.T) {
	t.Run("existing import is kept", func(t *testing.T) {
		src := "package p\n\nimport h \"github.com/vango-dev/hyperdom/pkg/hyper\"\n\nvar x = <br/>\n"
		got := compileString(t, src)
		if n := strings.Count(got, "hyperdom/pkg/hyper"); n != 1 {
			t.Errorf("expected one import, got %d in\n%s", n, got)
		}
	})

	t.Run("conflicting name", func(t *testing.T) {
		src := "package p\n\nimport h \"example.com/other\"\n\nvar x = <br/>\n"
		_, err := Compile([]byte(src), "x.gsx", Options{})
		var se *SyntaxError
		if !errors.As(err, &se) || !strings.Contains(se.Msg, "reserved") {
			t.Fatalf("expected reserved-name error, got %v", err)
		}
		if se.Line != 3 {
			t.Errorf("expected line 3, got %d", se.Line)
		}
	})

	t.Run("no markup no import", func(t *testing.T) {
		src := "package p\n\nvar x = 1\n"
		if got := compileString(t, src); strings.Contains(got, "import") {
			t.Errorf("unexpected import in\n%s", got)
		}
	})
}

func TestHeader(t *testing.T) {
	src := "package p\n\nvar x = <br/>\n"
	res, err := Compile([]byte(src), "views/x.gsx", Options{Header: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	want := "// Code generated by hyperc from x.gsx. DO NOT EDIT.\n//line views/x.gsx:1\n" + importLine + "\n"
	if !strings.HasPrefix(string(res.Code), want) {
		t.Errorf("got\n%s", res.Code)
	}
	if !strings.HasPrefix(res.Map.Mappings, ";;") {
		t.Errorf("header lines should have no mappings, got %q", res.Map.Mappings)
	}
}

func TestFormat(t *testing.T) {
	src := "package p\n\nvar x = <div>\n<b>bold</b></div>\n"
	res, err := Compile([]byte(src), "x.gsx", Options{Format: true, Header: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Map != nil {
		t.Error("formatted output should have no source map")
	}
	if strings.Contains(string(res.Code), "//line") {
		t.Error("formatted output should have no line directive")
	}
	if !strings.Contains(string(res.Code), "var x = h.H(") {
		t.Errorf("unexpected output\n%s", res.Code)
	}
	if res.Markup != 2 {
		t.Errorf("expected 2 markup nodes, got %d", res.Markup)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
		col  int
	}{
		{"mismatched close", "var x = <div>\n</span>", "expected </div>, found </span>", 4, 1},
		{"unclosed", "var x = <div>", "unclosed <div>", 3, 9},
		{"unclosed fragment", "var x = <>a", "unclosed <>", 3, 9},
		{"event without handler", "var x = <a onClick/>", "needs a handler", 3, 12},
		{"empty attribute expression", "var x = <a href={}/>", "non-empty expression", 3, 17},
		{"brace in text", "var x = <p>}</p>", "unexpected }", 3, 12},
		{"ref string", `var x = <p ref="r"/>`, "ref needs an expression", 3, 12},
		{"bad component name", "var x = <My-Widget/>", "not a Go identifier", 3, 10},
		{"bad attribute", "var x = <p =1/>", "unexpected '='", 3, 12},
		{"unterminated expression", "var x = <p>{a", "unterminated {", 3, 12},
		{"invalid go", "var x = <p/> +", "expected operand", 4, 1},
		{"invalid go after markup", `var x = <p class="a"/> + )`, "expected operand", 3, 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile([]byte("package p\n\n"+tt.src+"\n"), "x.gsx", Options{})
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SyntaxError, got %v", err)
			}
			if !strings.Contains(se.Msg, tt.msg) {
				t.Errorf("message %q does not contain %q", se.Msg, tt.msg)
			}
			if se.Line != tt.line || se.Column != tt.col {
				t.Errorf("position %d:%d, want %d:%d", se.Line, se.Column, tt.line, tt.col)
			}
			if !strings.HasPrefix(err.Error(), "x.gsx:") {
				t.Errorf("error should start with the file name: %v", err)
			}
		})
	}
}

func TestSyntaxErrorColumnWithHeader(t *testing.T) {
	src := "package p\n\nvar x = <p class=\"a\"/> + )\n"
	for _, header := range []bool{false, true} {
		_, err := Compile([]byte(src), "x.gsx", Options{Header: header})
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("header=%v: expected *SyntaxError, got %v", header, err)
		}
		if se.Line != 3 || se.Column != 26 {
			t.Errorf("header=%v: position %d:%d, want 3:26", header, se.Line, se.Column)
		}
	}
}

func TestTransform(t *testing.T) {
	src := []byte("package p\n\nvar x = <br/>\n")
	tests := []struct {
		id   string
		want bool
	}{
		{"a.gsx", true},
		{"dir/a.gsx?x=.gsx", true},
		{"a.go", false},
		{"a.gsx?raw", false},
		{"a.gsx?", false},
		{"a.go?v.gsx", false},
	}
	for _, tt := range tests {
		res, err := Transform(src, tt.id, Options{})
		if err != nil {
			t.Fatalf("%s: %v", tt.id, err)
		}
		if (res != nil) != tt.want {
			t.Errorf("%s: compiled=%v, want %v", tt.id, res != nil, tt.want)
		}
	}
}
