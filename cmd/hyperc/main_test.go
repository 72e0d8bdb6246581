package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/hyperdom/internal/config"
	"github.com/vango-dev/hyperdom/internal/errors"
)

func project(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if err := config.New().SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(args ...string) (string, error) {
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	dir := project(t, map[string]string{
		"views/card.gsx": "package views\n\nvar Card = <div class=\"card\">hi</div>\n",
	})

	if _, err := execute("build", "--no-color", "--config", filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "views", "card_gsx.go"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `h.H("div"`) {
		t.Errorf("output does not call the runtime:\n%s", out)
	}
	if !strings.HasPrefix(string(out), "// Code generated by hyperc") {
		t.Errorf("output has no header:\n%s", out)
	}
}

func TestBuildCommandPaths(t *testing.T) {
	dir := project(t, map[string]string{
		"a/one.gsx": "package a\n\nvar One = <p/>\n",
		"b/two.gsx": "package b\n\nvar Two = <p/>\n",
	})

	_, err := execute("build", "--no-color", "--no-header",
		"--config", filepath.Join(dir, config.ConfigFileName),
		filepath.Join(dir, "a"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "a", "one_gsx.go"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.HasPrefix(string(out), "// Code generated") {
		t.Errorf("--no-header still wrote a header:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "b", "two_gsx.go")); !os.IsNotExist(err) {
		t.Errorf("b/two.gsx was compiled although only a/ was named")
	}
}

func TestBuildCommandFailure(t *testing.T) {
	dir := project(t, map[string]string{
		"bad.gsx": "package views\n\nvar X = <div><span></div>\n",
	})

	_, err := execute("build", "--no-color", "--config", filepath.Join(dir, config.ConfigFileName))
	if err == nil {
		t.Fatal("build of a broken file succeeded")
	}
	d, ok := err.(*errors.Diagnostic)
	if !ok {
		t.Fatalf("error is %T, want *errors.Diagnostic", err)
	}
	if d.Code != "X001" {
		t.Errorf("code = %s, want X001", d.Code)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad_gsx.go")); !os.IsNotExist(err) {
		t.Errorf("output written for a file that did not compile")
	}
}

func TestBuildCommandRejectsFormatWithSourceMaps(t *testing.T) {
	dir := project(t, nil)

	_, err := execute("build", "--format", "--source-maps", "--config", filepath.Join(dir, config.ConfigFileName))
	if err == nil {
		t.Fatal("expected a configuration error")
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute("config", "init", dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dev.Port != config.DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Dev.Port, config.DefaultPort)
	}

	if _, err := execute("config", "init", dir); err == nil {
		t.Error("second init overwrote the file without --force")
	}
	if _, err := execute("config", "init", "--force", dir); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestConfigSchema(t *testing.T) {
	out, err := execute("config", "schema")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"$schema"`, `"reloadPath"`, `"sourceMaps"`, `"exclude"`} {
		if !strings.Contains(out, want) {
			t.Errorf("schema is missing %s", want)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute("version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q, want %q", out, version)
	}
}

func TestNewCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")

	if _, err := execute("new", "--no-color", dir); err != nil {
		t.Fatalf("new: %v", err)
	}
	if !config.Exists(dir) {
		t.Fatal("no hyperc.json written")
	}

	if _, err := execute("build", "--no-color", "--config", filepath.Join(dir, config.ConfigFileName)); err != nil {
		t.Fatalf("build of the new project: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "views", "app_gsx.go")); err != nil {
		t.Errorf("views/app.gsx was not compiled: %v", err)
	}

	if _, err := execute("new", "--template", "nope", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Error("unknown template accepted")
	}
}
