package hyper

import (
	"fmt"
	"reflect"
	"sort"
)

// Prop is one property entry.
type Prop struct {
	Key   string
	Value any
}

// Props is an ordered property bag. Iteration follows insertion order.
type Props []Prop

// Children is an ordered children sequence.
type Children []any

const spreadKey = "..."

// Spread returns an entry that splices the entries of v in its place. v is
// a Props or a map with string keys; map entries are taken in key order.
func Spread(v any) Prop {
	return Prop{Key: spreadKey, Value: v}
}

// Normalize expands spreads. A key that appears more than once keeps the
// position of its first occurrence and the value of its last, as object
// spread does.
func (p Props) Normalize() (Props, error) {
	if !p.needsNormalize() {
		return p, nil
	}
	out := make(Props, 0, len(p))
	index := make(map[string]int, len(p))
	if err := p.normalizeInto(&out, index); err != nil {
		return nil, err
	}
	return out, nil
}

func (p Props) needsNormalize() bool {
	seen := make(map[string]struct{}, len(p))
	for _, e := range p {
		if e.Key == spreadKey {
			return true
		}
		if _, dup := seen[e.Key]; dup {
			return true
		}
		seen[e.Key] = struct{}{}
	}
	return false
}

func (p Props) normalizeInto(out *Props, index map[string]int) error {
	for _, e := range p {
		if e.Key != spreadKey {
			put(out, index, e)
			continue
		}
		entries, err := mappingEntries(e.Value)
		if err != nil {
			return err
		}
		for _, se := range entries {
			put(out, index, se)
		}
	}
	return nil
}

func put(out *Props, index map[string]int, e Prop) {
	if i, ok := index[e.Key]; ok {
		(*out)[i].Value = e.Value
		return
	}
	index[e.Key] = len(*out)
	*out = append(*out, e)
}

// Get returns the value of the last entry with key.
func (p Props) Get(key string) (any, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value, true
		}
	}
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key != spreadKey {
			continue
		}
		if entries, err := mappingEntries(p[i].Value); err == nil {
			if v, ok := entries.Get(key); ok {
				return v, true
			}
		}
	}
	return nil, false
}

// GetString returns the value of key in string form, or "" when absent.
func (p Props) GetString(key string) string {
	v, _ := p.Get(key)
	return stringify(Resolve(v).Get())
}

// Children returns the children a component received, either positionally
// or through an explicit "children" property.
func (p Props) Children() Children {
	v, ok := p.Get("children")
	if !ok {
		return nil
	}
	switch c := v.(type) {
	case Children:
		return c
	case []any:
		return Children(c)
	default:
		return Children{c}
	}
}

// mappingEntries turns a mapping value into ordered entries.
func mappingEntries(v any) (Props, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case Props:
		return m.Normalize()
	case Prop:
		return Props{m}.Normalize()
	case map[string]any:
		out := make(Props, 0, len(m))
		for _, k := range sortedKeys(m) {
			out = append(out, Prop{Key: k, Value: m[k]})
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: %T", ErrInvalidMapping, v)
	}
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	out := make(Props, 0, len(keys))
	for _, k := range keys {
		out = append(out, Prop{Key: k.String(), Value: rv.MapIndex(k).Interface()})
	}
	return out, nil
}

// isMapping reports whether v can be read by mappingEntries.
func isMapping(v any) bool {
	switch v.(type) {
	case Props, Prop, map[string]any:
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
