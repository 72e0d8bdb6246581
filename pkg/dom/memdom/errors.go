package memdom

import "errors"

var (
	// ErrInvalidCharacter mirrors the DOM's InvalidCharacterError.
	ErrInvalidCharacter = errors.New("memdom: invalid character")

	// ErrSyntax mirrors the DOM's SyntaxError, raised for empty class tokens.
	ErrSyntax = errors.New("memdom: syntax error")

	// ErrHierarchyRequest mirrors the DOM's HierarchyRequestError.
	ErrHierarchyRequest = errors.New("memdom: hierarchy request error")

	// ErrWrongDocument is returned when a node from another document is
	// inserted.
	ErrWrongDocument = errors.New("memdom: node belongs to another document")
)
