package gsx

import (
	"encoding/json"
	"strings"
)

// SourceMap is a version 3 source map from the compiled Go file back to
// the .gsx source.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// JSON encodes the map.
func (m *SourceMap) JSON() ([]byte, error) {
	return json.Marshal(m)
}

func (e *emitter) sourceMap(file, source string) *SourceMap {
	var (
		b                       strings.Builder
		prevSrcLine, prevSrcCol int
	)
	for i, segs := range e.segments {
		if i > 0 {
			b.WriteByte(';')
		}
		prevGenCol := 0
		for j, s := range segs {
			if j > 0 {
				b.WriteByte(',')
			}
			writeVLQ(&b, s.genCol-prevGenCol)
			writeVLQ(&b, 0)
			writeVLQ(&b, s.srcLine-prevSrcLine)
			writeVLQ(&b, s.srcCol-prevSrcCol)
			prevGenCol, prevSrcLine, prevSrcCol = s.genCol, s.srcLine, s.srcCol
		}
	}
	return &SourceMap{
		Version:        3,
		File:           strings.TrimSuffix(file, Ext) + ".go",
		Sources:        []string{file},
		SourcesContent: []string{source},
		Names:          []string{},
		Mappings:       b.String(),
	}
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// writeVLQ appends v in the base64 VLQ encoding of source maps: the sign
// in the lowest bit, then five bits per digit with bit 6 as continuation.
func writeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v << 1) | 1
	}
	for {
		digit := u & 0x1f
		u >>= 5
		if u > 0 {
			digit |= 0x20
		}
		b.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}
