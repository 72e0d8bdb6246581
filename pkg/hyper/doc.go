// Package hyper builds live DOM trees from hyperscript calls and keeps them
// current with fine-grained reactive bindings.
//
// The calling contract is H(tag, props, children):
//
//	count := reactive.NewSignal(0)
//	button := hyper.H("button", hyper.Props{
//	    {Key: "class", Value: "counter"},
//	    {Key: "on", Value: hyper.Props{{Key: "click", Value: func() { count.Update(inc) }}}},
//	}, hyper.Children{"Clicked ", count, " times"})
//
// A tag is a host element name, "" for a fragment, or a Component. Each
// property is either applied once (literals) or bound through a
// reactive.Effect (getter functions, signals and memos), so a change touches
// only the attribute, class, style entry or text node that reads it. Nothing
// is diffed and no subtree is re-rendered.
//
// Reserved property keys:
//
//	on         event listeners, keyed by event type
//	ref        callback invoked with the constructed node
//	show       display toggle by truthiness
//	style      mapping of style fields (a string style is a plain attribute)
//	classList  mapping of class name to truthiness
//	innerHTML  assigned as a property instead of an attribute
//
// Trees are mounted with Render or Engine.Scope; the returned Mount owns
// every binding created during construction and releases them on Unmount.
// Code generated by the gsx compiler targets this package.
package hyper
