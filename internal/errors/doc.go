// Package errors formats hyperc diagnostics.
//
// A Diagnostic carries a registered code, the source location, the lines
// around it and a hint:
//
//	d := errors.FromError(err, src, "X001")
//	fmt.Fprint(os.Stderr, d.Format())
//	// ERROR G004: expected </div>, found </span>
//	//
//	//   views/page.gsx:12:3
//	//
//	//     10 │     <div>
//	//     11 │       text
//	//   → 12 │   </span>
//	//        │   ^
//	//
//	//   Hint: Close elements in the reverse order they were opened.
package errors
