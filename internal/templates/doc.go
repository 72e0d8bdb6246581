// Package templates holds the project skeletons written by hyperc new.
//
// # Available Templates
//
//   - server: pages rendered to HTML with the in-memory document
//   - wasm: an interactive page running in the browser
//
// # Usage
//
//	tmpl, err := templates.Get("server")
//	if err != nil {
//	    return err
//	}
//	err = tmpl.Create(dir, templates.Config{ModulePath: "example.com/site"})
//
// Template files are text/template sources with {{.ProjectName}} and
// {{.ModulePath}} available.
package templates
