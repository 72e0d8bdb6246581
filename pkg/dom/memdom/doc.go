// Package memdom is an in-memory implementation of the dom interfaces,
// backed by golang.org/x/net/html nodes.
//
// It follows browser behavior where the engine can observe it: element and
// attribute names are validated, innerHTML is parsed as an HTML fragment,
// appending a fragment moves its children, events bubble, and clones do not
// carry listeners. Trees serialize with OuterHTML.
//
// A Document and its nodes are not safe for concurrent use.
package memdom
