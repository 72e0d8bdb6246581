package build

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alexflint/go-filemutex"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/hyperdom/internal/config"
	"github.com/vango-dev/hyperdom/internal/errors"
	"github.com/vango-dev/hyperdom/pkg/gsx"
)

// LockFileName is created next to hyperc.json while a build writes files.
const LockFileName = ".hyperc.lock"

// FileResult is the outcome of compiling one .gsx file.
type FileResult struct {
	Source string
	Output string

	// Markup is the number of elements and fragments lowered.
	Markup int

	// Written is false when the output already had the same content.
	Written bool

	// Err is a *errors.Diagnostic when compilation failed.
	Err error
}

// Result is the outcome of a build.
type Result struct {
	Duration time.Duration
	Files    []FileResult
}

// Failed returns the results that carry an error.
func (r *Result) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Err joins the errors of every failed file.
func (r *Result) Err() error {
	var errs []error
	for _, f := range r.Failed() {
		errs = append(errs, f.Err)
	}
	return stderrors.Join(errs...)
}

// Options configures a Builder.
type Options struct {
	// Jobs bounds the files compiled in parallel. Zero means GOMAXPROCS.
	Jobs int

	Logger *slog.Logger

	// OnProgress is called after each file.
	OnProgress func(FileResult)
}

// Builder compiles the .gsx files of a project.
type Builder struct {
	config  *config.Config
	options Options
	logger  *slog.Logger

	mu     sync.Mutex
	hashes map[string]string
}

// New creates a builder for cfg.
func New(cfg *config.Config, options Options) *Builder {
	if options.Jobs <= 0 {
		options.Jobs = runtime.GOMAXPROCS(0)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		config:  cfg,
		options: options,
		logger:  logger.With("component", "build"),
		hashes:  make(map[string]string),
	}
}

// Sources lists the .gsx files under the configured source directories,
// skipping excluded names.
func (b *Builder) Sources() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, root := range b.config.SourceDirs() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && b.config.Excluded(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && strings.HasSuffix(path, gsx.Ext) && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.New("X001").WithDetail("Cannot list sources in " + root).Wrap(err)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Build compiles every source file. Failing files are reported in the
// result; the returned error is for problems outside any one file.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	files, err := b.Sources()
	if err != nil {
		return nil, err
	}
	return b.BuildFiles(ctx, files)
}

// BuildFiles compiles the given files in parallel.
func (b *Builder) BuildFiles(ctx context.Context, files []string) (*Result, error) {
	start := time.Now()

	unlock, err := b.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	results := make([]FileResult, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.options.Jobs)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = b.compileFile(ctx, path)
			if b.options.OnProgress != nil {
				b.options.OnProgress(results[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Duration: time.Since(start), Files: results}
	b.logger.Info("build finished",
		"files", len(files),
		"failed", len(res.Failed()),
		"duration", res.Duration,
	)
	return res, nil
}

// lock takes the project lock so that two hyperc processes do not write
// the same outputs.
func (b *Builder) lock() (func(), error) {
	m, err := filemutex.New(filepath.Join(b.config.Dir(), LockFileName))
	if err != nil {
		return nil, errors.New("X001").WithDetail("Cannot create the build lock").Wrap(err)
	}
	if err := m.Lock(); err != nil {
		m.Close()
		return nil, errors.New("X001").WithDetail("Cannot take the build lock").Wrap(err)
	}
	return func() {
		m.Unlock()
		m.Close()
	}, nil
}

func (b *Builder) compileFile(ctx context.Context, path string) FileResult {
	res := FileResult{Source: path, Output: b.config.OutputName(path)}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = errors.New("X001").WithDetail("Cannot read " + path).Wrap(err)
		return res
	}

	out, err := gsx.CompileContext(ctx, src, path, gsx.Options{
		Header: b.config.Build.Header,
		Format: b.config.Build.Format,
	})
	if err != nil {
		res.Err = errors.FromError(err, src, "X001")
		b.logger.Warn("compile failed", "file", path, "error", err)
		return res
	}
	res.Markup = out.Markup

	written, err := b.writeIfChanged(res.Output, out.Code)
	if err != nil {
		res.Err = errors.New("X001").WithDetail("Cannot write " + res.Output).Wrap(err)
		return res
	}
	res.Written = written

	if b.config.Build.SourceMaps && out.Map != nil {
		data, err := out.Map.JSON()
		if err == nil {
			_, err = b.writeIfChanged(res.Output+".map", data)
		}
		if err != nil {
			res.Err = errors.New("X001").WithDetail("Cannot write the source map of " + res.Output).Wrap(err)
		}
	}
	return res
}

// writeIfChanged writes data unless path already holds it, so unchanged
// outputs keep their modification time.
func (b *Builder) writeIfChanged(path string, data []byte) (bool, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	b.mu.Lock()
	known := b.hashes[path] == hash
	b.mu.Unlock()
	if known {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	} else if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		b.remember(path, hash)
		return false, nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	b.remember(path, hash)
	return true, nil
}

func (b *Builder) remember(path, hash string) {
	b.mu.Lock()
	b.hashes[path] = hash
	b.mu.Unlock()
}

// Remove deletes the outputs of a source file that no longer exists.
func (b *Builder) Remove(source string) error {
	out := b.config.OutputName(source)
	for _, path := range []string{out, out + ".map"} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.New("X001").WithDetail("Cannot remove " + path).Wrap(err)
		}
		b.mu.Lock()
		delete(b.hashes, path)
		b.mu.Unlock()
	}
	return nil
}

// Clean removes the outputs of every source file.
func (b *Builder) Clean() error {
	files, err := b.Sources()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := b.Remove(f); err != nil {
			return err
		}
	}
	return nil
}
