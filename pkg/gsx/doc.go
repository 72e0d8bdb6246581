// Package gsx compiles .gsx files, Go source with embedded markup, into
// plain Go that builds DOM trees through package hyper.
//
// Markup may appear wherever a Go operand may start:
//
//	func Counter(count *reactive.Signal[int]) h.Node {
//		return <button className="counter" onClick={func() { count.Update(inc) }}>
//			Count: {count.Get}
//		</button>
//	}
//
// compiles, once formatted, to
//
//	func Counter(count *reactive.Signal[int]) h.Node {
//		return h.H("button", h.Props{{Key: "className", Value: "counter"}, {Key: "on", Value: h.Props{{Key: "click", Value: func() { count.Update(inc) }}}}}, h.Children{
//			"\n\t\tCount: ", count.Get,
//		})
//	}
//
// Lowering rules:
//
//   - A tag whose name starts with an upper-case letter, or contains a
//     dot, is a component and is passed as a Go expression; any other
//     tag is passed as a string. <>...</> passes "".
//   - Attributes become Props entries in source order. onX attributes
//     are collected, lower-cased without the "on" prefix, into one
//     trailing "on" entry. A valueless attribute is h.Null.
//   - ref={x} becomes func(el h.Node) { x = el }; a function literal is
//     passed as is.
//   - Text that is only whitespace is dropped; other text is kept raw.
//     Empty {} children are dropped.
//
// Every source line stays on the same line of the output, so compiler
// errors and stack traces point into the .gsx file.
package gsx
