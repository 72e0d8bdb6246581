package memdom

import "strings"

// classList edits the element's class attribute in place.
type classList struct {
	el *Element
}

func (c *classList) tokens() []string {
	raw, _ := getAttr(c.el.n, "class")
	return strings.Fields(raw)
}

func (c *classList) Add(tokens ...string) error {
	for _, t := range tokens {
		if err := validateToken(t); err != nil {
			return err
		}
	}
	current := c.tokens()
	for _, t := range tokens {
		if !contains(current, t) {
			current = append(current, t)
		}
	}
	setAttr(c.el.n, "class", strings.Join(current, " "))
	return nil
}

func (c *classList) Remove(tokens ...string) error {
	for _, t := range tokens {
		if err := validateToken(t); err != nil {
			return err
		}
	}
	if _, ok := getAttr(c.el.n, "class"); !ok {
		return nil
	}
	current := c.tokens()
	kept := current[:0]
	for _, t := range current {
		if !contains(tokens, t) {
			kept = append(kept, t)
		}
	}
	setAttr(c.el.n, "class", strings.Join(kept, " "))
	return nil
}

func (c *classList) Contains(token string) bool {
	return contains(c.tokens(), token)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
