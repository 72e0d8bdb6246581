package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/vango-dev/hyperdom/internal/config"
	"github.com/vango-dev/hyperdom/internal/errors"
)

// Config holds the values substituted into template files.
type Config struct {
	// ProjectName is the name of the project, used in page titles.
	ProjectName string

	// ModulePath is the Go module path.
	ModulePath string
}

// Template is a project skeleton.
type Template struct {
	Name        string
	Description string

	// Files maps slash-separated relative paths to text/template sources.
	Files map[string]string
}

var templates = map[string]*Template{
	"server": serverTemplate(),
	"wasm":   wasmTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("X002").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns the template names in order.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create writes the template into dir along with a default hyperc.json.
// Existing files are never overwritten.
func (t *Template) Create(dir string, cfg Config) error {
	if cfg.ProjectName == "" {
		cfg.ProjectName = filepath.Base(dir)
	}
	if cfg.ModulePath == "" {
		cfg.ModulePath = cfg.ProjectName
	}

	files := make(map[string][]byte, len(t.Files))
	for rel, content := range t.Files {
		tmpl, err := template.New(rel).Parse(content)
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", rel, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", rel, err)
		}
		files[filepath.FromSlash(rel)] = buf.Bytes()
	}

	for rel := range files {
		if _, err := os.Stat(filepath.Join(dir, rel)); err == nil {
			return errors.New("X002").WithDetail(rel + " already exists in " + dir)
		}
	}
	if config.Exists(dir) {
		return errors.New("X002").WithDetail(config.ConfigFileName + " already exists in " + dir)
	}

	for rel, data := range files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return config.New().SaveTo(filepath.Join(dir, config.ConfigFileName))
}

const goMod = `module {{.ModulePath}}

go 1.24.0
`

const gitignore = `*_gsx.go
*_gsx.go.map
.hyperc.lock
`

func serverTemplate() *Template {
	return &Template{
		Name:        "server",
		Description: "Pages rendered to HTML on the server",
		Files: map[string]string{
			"go.mod":     goMod,
			".gitignore": gitignore,
			"main.go": `package main

//go:generate go run github.com/vango-dev/hyperdom/cmd/hyperc build

import (
	"flag"
	"io"
	"log"
	"net/http"

	"github.com/vango-dev/hyperdom/pkg/dom/memdom"
	"github.com/vango-dev/hyperdom/pkg/hyper"

	"{{.ModulePath}}/views"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		doc := memdom.NewDocument()
		host, err := doc.CreateElement("main")
		if err == nil {
			err = doc.Body().AppendChild(host)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		m, err := hyper.New(doc).Render(views.App, host, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer m.Unmount()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, "<!doctype html><title>{{.ProjectName}}</title>")
		io.WriteString(w, doc.Body().OuterHTML())
	})

	log.Printf("listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
`,
			"views/app.gsx": `package views

import "github.com/vango-dev/hyperdom/pkg/hyper"

func App(props hyper.Props) hyper.Node {
	return <div class="app">
		<h1>{{.ProjectName}}</h1>
		<Greeting name="world" />
	</div>
}

func Greeting(props hyper.Props) hyper.Node {
	return <p>Hello, {props.GetString("name")}!</p>
}
`,
		},
	}
}

func wasmTemplate() *Template {
	return &Template{
		Name:        "wasm",
		Description: "An interactive page compiled to WebAssembly",
		Files: map[string]string{
			"go.mod":     goMod,
			".gitignore": gitignore + "public/main.wasm\n",
			"main.go": `//go:build js && wasm

package main

//go:generate go run github.com/vango-dev/hyperdom/cmd/hyperc build

import (
	"github.com/vango-dev/hyperdom/pkg/dom/jsdom"
	"github.com/vango-dev/hyperdom/pkg/hyper"

	"{{.ModulePath}}/views"
)

func main() {
	doc := jsdom.Global()
	if _, err := hyper.New(doc).Render(views.Counter, doc.GetElementByID("app"), nil); err != nil {
		panic(err)
	}
	select {}
}
`,
			"views/counter.gsx": `package views

import (
	"github.com/vango-dev/hyperdom/pkg/hyper"
	"github.com/vango-dev/hyperdom/pkg/reactive"
)

func Counter(props hyper.Props) hyper.Node {
	count := reactive.NewSignal(0)
	return <div class="counter">
		<button onClick={func() { count.Update(func(n int) int { return n - 1 }) }}>-</button>
		<span>{count}</span>
		<button onClick={func() { count.Update(func(n int) int { return n + 1 }) }}>+</button>
	</div>
}
`,
			"public/index.html": `<!doctype html>
<html>
<head>
	<meta charset="utf-8">
	<title>{{.ProjectName}}</title>
	<script src="wasm_exec.js"></script>
	<script src="/_hyper/client.js"></script>
	<script>
		const go = new Go();
		WebAssembly.instantiateStreaming(fetch("main.wasm"), go.importObject).then((r) => go.run(r.instance));
	</script>
</head>
<body>
	<div id="app"></div>
</body>
</html>
`,
		},
	}
}
