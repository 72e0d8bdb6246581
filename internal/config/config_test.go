package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/hyperdom/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, DefaultPort)
	}
	if cfg.Build.Suffix != DefaultSuffix || !cfg.Build.Header {
		t.Errorf("Build = %+v", cfg.Build)
	}
	if cfg.DebounceDuration() != DefaultDebounce {
		t.Errorf("DebounceDuration = %v", cfg.DebounceDuration())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	var d *errors.Diagnostic
	if !stderrors.As(err, &d) || d.Code != "C001" {
		t.Fatalf("expected C001 for a missing file, got %v", err)
	}

	data := `{
  "source": {"dirs": ["views", "/abs"]},
  "build": {"sourceMaps": true, "header": false},
  "dev": {"port": 8080, "debounce": "250ms"}
}
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dev.Port != 8080 || cfg.DebounceDuration() != 250*time.Millisecond {
		t.Errorf("dev = %+v", cfg.Dev)
	}
	if cfg.Dev.Host != DefaultHost || cfg.Dev.ReloadPath != DefaultReloadPath {
		t.Errorf("missing fields should keep defaults: %+v", cfg.Dev)
	}
	if cfg.Build.Header || !cfg.Build.SourceMaps || cfg.Build.Suffix != DefaultSuffix {
		t.Errorf("build = %+v", cfg.Build)
	}

	dirs := cfg.SourceDirs()
	if dirs[0] != filepath.Join(dir, "views") || dirs[1] != "/abs" {
		t.Errorf("SourceDirs = %v", dirs)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path = %s", cfg.Path())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `{"dev": `},
		{"port", `{"dev": {"port": 70000}}`},
		{"suffix", `{"build": {"suffix": "_gsx.txt"}}`},
		{"test suffix", `{"build": {"suffix": "_gsx_test.go"}}`},
		{"format with maps", `{"build": {"format": true, "sourceMaps": true}}`},
		{"debounce", `{"dev": {"debounce": "soon"}}`},
		{"reload path", `{"dev": {"reloadPath": "reload"}}`},
		{"exclude", `{"source": {"exclude": ["["]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFile(path)
			var d *errors.Diagnostic
			if !stderrors.As(err, &d) || d.Code != "C002" {
				t.Errorf("expected C002, got %v", err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOrDefault(dir)
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Dir() != dir {
		t.Errorf("Dir = %s, want %s", cfg.Dir(), dir)
	}

	cfg.Dev.Port = 4000
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, err := LoadOrDefault(dir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Dev.Port != 4000 {
		t.Errorf("saved port not read back: %d", again.Dev.Port)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("expected an error without a config path")
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	if got != root {
		t.Errorf("got %s, want %s", got, root)
	}
}

func TestHelpers(t *testing.T) {
	cfg := New()
	if got := cfg.DevAddress(); got != "localhost:3000" {
		t.Errorf("DevAddress = %s", got)
	}
	if got := cfg.OutputName("views/page.gsx"); got != "views/page_gsx.go" {
		t.Errorf("OutputName = %s", got)
	}
	for name, want := range map[string]bool{
		".git":         true,
		"node_modules": true,
		"views":        false,
		"page.gsx":     false,
	} {
		if got := cfg.Excluded(name); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", name, got, want)
		}
	}
}
