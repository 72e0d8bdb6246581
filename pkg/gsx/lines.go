package gsx

import (
	"sort"
	"unicode/utf8"
)

// lineTable converts byte offsets to 0-based line and column.
type lineTable struct {
	src    string
	starts []int
}

func newLineTable(src string) *lineTable {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineTable{src: src, starts: starts}
}

// position returns the 0-based line and the 0-based column, in UTF-16
// units as source maps count them.
func (t *lineTable) position(off int) (line, col int) {
	line = sort.Search(len(t.starts), func(i int) bool { return t.starts[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	return line, utf16Len(t.src[t.starts[line]:off])
}

func (t *lineTable) line(off int) int {
	l, _ := t.position(off)
	return l
}

func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
