package gsx

import "strings"

// Transform compiles src when id names a .gsx file and returns nil, nil
// otherwise, so a build pipeline can hand it every file it loads. id may
// carry a "?query" suffix; both id and id without the query must end in
// Ext.
func Transform(src []byte, id string, opts Options) (*Result, error) {
	path := stripQuery(id)
	if !strings.HasSuffix(id, Ext) || !strings.HasSuffix(path, Ext) {
		return nil, nil
	}
	return Compile(src, path, opts)
}

func stripQuery(id string) string {
	if i := strings.IndexByte(id, '?'); i >= 0 && i < len(id)-1 {
		return id[:i]
	}
	return id
}
