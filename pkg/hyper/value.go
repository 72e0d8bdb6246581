package hyper

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/vango-dev/hyperdom/pkg/reactive"
)

// Kind classifies a property value.
type Kind int

const (
	// Omitted is a nil value: the property is skipped entirely.
	Omitted Kind = iota
	// Literal is a static value, applied once.
	Literal
	// Getter is a zero-argument function returning one value.
	Getter
	// Cell is a reactive.Cell such as a Signal or a Memo.
	Cell
)

func (k Kind) String() string {
	switch k {
	case Omitted:
		return "omitted"
	case Literal:
		return "literal"
	case Getter:
		return "getter"
	case Cell:
		return "cell"
	default:
		return "unknown"
	}
}

// Value is a classified property value. Getter and Cell values share the
// reactive getter shape returned by Get.
type Value struct {
	kind Kind
	lit  any
	get  func() any
}

// Resolve classifies v.
func Resolve(v any) Value {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() == reflect.Func && rv.IsNil()) {
		return Value{kind: Omitted}
	}

	switch v := v.(type) {
	case reactive.Cell:
		return Value{kind: Cell, get: v.ReadAny}
	case func() any:
		return Value{kind: Getter, get: v}
	case func() string:
		return Value{kind: Getter, get: func() any { return v() }}
	case func() bool:
		return Value{kind: Getter, get: func() any { return v() }}
	case func() int:
		return Value{kind: Getter, get: func() any { return v() }}
	}

	if rv.Kind() == reflect.Func {
		if t := rv.Type(); t.NumIn() == 0 && t.NumOut() == 1 {
			return Value{kind: Getter, get: func() any { return rv.Call(nil)[0].Interface() }}
		}
	}
	return Value{kind: Literal, lit: v}
}

// Kind returns the classification.
func (v Value) Kind() Kind {
	return v.kind
}

// Reactive reports whether the value must be bound.
func (v Value) Reactive() bool {
	return v.kind == Getter || v.kind == Cell
}

// Literal returns the static value. It is nil unless Kind is Literal.
func (v Value) Literal() any {
	return v.lit
}

// Get returns the current value. Reading it inside an effect tracks the
// underlying sources.
func (v Value) Get() any {
	if v.get != nil {
		return v.get()
	}
	return v.lit
}

// NullValue is the type of Null.
type NullValue struct{}

// String returns the empty string.
func (NullValue) String() string { return "" }

// Null is the explicit null literal compiled code passes for attributes
// written without a value, as in <input disabled />. It is set as an empty
// attribute and is falsy.
var Null NullValue

// stringify converts a value to attribute or text form.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case NullValue:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// truthy reports whether v counts as true for show and classList.
// nil, false, zero numbers, NaN, "" and Null are false.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil, NullValue:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	case float32:
		return v != 0 && !math.IsNaN(float64(v))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.String:
		return rv.Len() != 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// isPrimitive reports whether v becomes a static text node as a child.
func isPrimitive(v any) bool {
	switch v.(type) {
	case string, NullValue, bool, fmt.Stringer, error:
		return true
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.String, reflect.Bool:
		return true
	}
	return false
}
