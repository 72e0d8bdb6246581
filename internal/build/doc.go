// Package build compiles the .gsx files of a project into Go files.
//
// Every page.gsx gets a page_gsx.go next to it, plus page_gsx.go.map when
// source maps are enabled. Files are compiled in parallel and an output is
// only rewritten when its content changed:
//
//	b := build.New(cfg, build.Options{})
//	res, err := b.Build(ctx)
//	if err != nil {
//		return err
//	}
//	for _, f := range res.Failed() {
//		errors.Print(os.Stderr, f.Err)
//	}
package build
