package memdom

import (
	"fmt"
	"strings"
	"unicode"
)

// validateName checks an element or attribute name against the XML Name
// production, which is what createElement and setAttribute enforce.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidCharacter)
	}
	for i, r := range name {
		if !isNameChar(r, i == 0) {
			return fmt.Errorf("%w: %q is not a valid name", ErrInvalidCharacter, name)
		}
	}
	return nil
}

func isNameChar(r rune, first bool) bool {
	switch {
	case r == ':' || r == '_':
		return true
	case r < 0x80 && unicode.IsLetter(r):
		return true
	case r >= 0xC0 && r != 0xD7 && r != 0xF7 && unicode.IsLetter(r):
		return true
	}
	if first {
		return false
	}
	return r == '-' || r == '.' || unicode.IsDigit(r) || r == 0xB7
}

// validateToken checks a class token the way DOMTokenList does.
func validateToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty class token", ErrSyntax)
	}
	if strings.ContainsAny(token, " \t\n\f\r") {
		return fmt.Errorf("%w: class token %q contains whitespace", ErrInvalidCharacter, token)
	}
	return nil
}
