package gsx

// Span is a half-open byte range of the source.
type Span struct {
	Start, Stop int
}

func (s Span) Pos() int { return s.Start }
func (s Span) End() int { return s.Stop }

// Node is a node of the markup tree.
type Node interface {
	Pos() int
	End() int
}

// Markup is an element or a fragment: the nodes that lower to an H call.
type Markup interface {
	Node
	markup()
}

// Element is <Name attrs...>children</Name> or <Name attrs... />.
type Element struct {
	Span
	Name        string
	Attrs       []Attr
	Children    []Node
	SelfClosing bool

	// OpenEnd is the offset just past the '>' or "/>" of the opening tag.
	OpenEnd int
	// Close is the offset of the closing tag, or of "/>".
	Close int
}

// Fragment is <>children</>.
type Fragment struct {
	Span
	Children []Node
	Close    int
}

// Text is literal text between tags.
type Text struct {
	Span
	Raw string
}

// ExprContainer is {expr} in child or attribute position.
type ExprContainer struct {
	Span
	Code *GoCode
}

// GoCode is a run of Go source that may contain markup.
type GoCode struct {
	Span
	Src    string
	Markup []Markup

	// Tokens counts the Go tokens of the run, comments excluded.
	Tokens int

	// last is the offset just past the final token, so trailing comments
	// and space can be left out when the run is embedded in a call.
	last int
}

// Empty reports whether the run holds nothing but comments and space.
func (g *GoCode) Empty() bool {
	return g.Tokens == 0 && len(g.Markup) == 0
}

// Attr is a NamedAttr or a SpreadAttr.
type Attr interface {
	Node
	attr()
}

// NamedAttr is name, name="text", name={expr} or name=<markup/>.
type NamedAttr struct {
	Span
	Name string

	// Value is nil for a valueless attribute, else a *StringLit, an
	// *ExprContainer or a Markup.
	Value Node
}

// SpreadAttr is {...expr}.
type SpreadAttr struct {
	Span
	Code *GoCode
}

// StringLit is a quoted attribute value. Raw excludes the quotes.
type StringLit struct {
	Span
	Raw string
}

func (*Element) markup()  {}
func (*Fragment) markup() {}

func (*NamedAttr) attr()  {}
func (*SpreadAttr) attr() {}
