package build

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vango-dev/hyperdom/internal/config"
	"github.com/vango-dev/hyperdom/internal/errors"
)

const page = "package views\n\nfunc Page() h.Node {\n\treturn <main>hello</main>\n}\n"

func newProject(t *testing.T, files map[string]string) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cfg, err := config.LoadOrDefault(dir)
	if err != nil {
		t.Fatal(err)
	}
	return cfg, dir
}

func TestSources(t *testing.T) {
	cfg, dir := newProject(t, map[string]string{
		"views/page.gsx":            page,
		"views/page_gsx.go":         "package views\n",
		"node_modules/x/bad.gsx":    "<",
		".cache/old.gsx":            "<",
		"views/partials/header.gsx": page,
	})

	files, err := New(cfg, Options{}).Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	want := []string{
		filepath.Join(dir, "views/page.gsx"),
		filepath.Join(dir, "views/partials/header.gsx"),
	}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("got %v, want %v", files, want)
	}
}

func TestBuild(t *testing.T) {
	cfg, dir := newProject(t, map[string]string{
		"page.gsx":   page,
		"broken.gsx": "package views\n\nvar x = <div></span>\n",
	})
	cfg.Build.SourceMaps = true

	var (
		mu       sync.Mutex
		progress int
	)
	b := New(cfg, Options{Jobs: 2, OnProgress: func(FileResult) {
		mu.Lock()
		progress++
		mu.Unlock()
	}})

	res, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if progress != 2 {
		t.Errorf("progress called %d times, want 2", progress)
	}

	failed := res.Failed()
	if len(failed) != 1 || failed[0].Source != filepath.Join(dir, "broken.gsx") {
		t.Fatalf("failed = %+v", failed)
	}
	var d *errors.Diagnostic
	if !stderrors.As(res.Err(), &d) || d.Code != "G004" {
		t.Errorf("expected a G004 diagnostic, got %v", res.Err())
	}

	out, err := os.ReadFile(filepath.Join(dir, "page_gsx.go"))
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !strings.HasPrefix(string(out), "// Code generated by hyperc from page.gsx. DO NOT EDIT.") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(string(out), `h.H("main", h.Props{}, h.Children{"hello"})`) {
		t.Errorf("markup not lowered:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "page_gsx.go.map")); err != nil {
		t.Errorf("source map missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "broken_gsx.go")); !os.IsNotExist(err) {
		t.Errorf("failed file should have no output, stat err = %v", err)
	}
}

func TestBuildSkipsUnchangedOutput(t *testing.T) {
	cfg, dir := newProject(t, map[string]string{"page.gsx": page})
	b := New(cfg, Options{})
	ctx := context.Background()

	first, err := b.Build(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Files[0].Written {
		t.Error("first build should write the output")
	}

	out := filepath.Join(dir, "page_gsx.go")
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(out, old, old); err != nil {
		t.Fatal(err)
	}

	second, err := New(cfg, Options{}).Build(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second.Files[0].Written {
		t.Error("identical output should not be rewritten")
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(old) {
		t.Errorf("mtime changed to %v", info.ModTime())
	}
}

func TestRemoveAndClean(t *testing.T) {
	cfg, dir := newProject(t, map[string]string{"a.gsx": page, "b.gsx": page})
	cfg.Build.SourceMaps = true
	b := New(cfg, Options{})
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := b.Remove(filepath.Join(dir, "a.gsx")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for _, name := range []string{"a_gsx.go", "a_gsx.go.map"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should be gone", name)
		}
	}
	if err := b.Remove(filepath.Join(dir, "missing.gsx")); err != nil {
		t.Errorf("removing missing outputs should succeed: %v", err)
	}

	if err := b.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b_gsx.go")); !os.IsNotExist(err) {
		t.Error("Clean should remove b_gsx.go")
	}
}

func TestBuildCancelled(t *testing.T) {
	cfg, _ := newProject(t, map[string]string{"page.gsx": page})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(cfg, Options{}).Build(ctx); !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
