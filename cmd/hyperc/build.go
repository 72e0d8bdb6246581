package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hyperdom/internal/build"
	"github.com/vango-dev/hyperdom/internal/config"
	"github.com/vango-dev/hyperdom/internal/errors"
	"github.com/vango-dev/hyperdom/pkg/gsx"
)

type buildFlags struct {
	format     bool
	sourceMaps bool
	noHeader   bool
	jobs       int
	clean      bool
	json       bool
}

func buildCmd() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build [paths...]",
		Short: "Compile .gsx files",
		Long: `Compile .gsx files to Go.

Without arguments every .gsx file under the configured source
directories is compiled. Arguments may name files or directories.
Each foo.gsx is written to foo_gsx.go next to it; files whose output
did not change are left alone.

Examples:
  hyperc build
  hyperc build ./views
  hyperc build --format views/card.gsx
  hyperc build --source-maps --jobs=4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runBuild(cmd.Context(), cfg, flags, args)
		},
	}

	cmd.Flags().BoolVar(&flags.format, "format", false, "Run gofmt over the output (disables source maps)")
	cmd.Flags().BoolVar(&flags.sourceMaps, "source-maps", false, "Write a .map file next to every output")
	cmd.Flags().BoolVar(&flags.noHeader, "no-header", false, "Omit the generated-code header and //line directive")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 0, "Files compiled in parallel (default: number of CPUs)")
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "Remove generated files before building")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print diagnostics as JSON, one per line")

	return cmd
}

func runBuild(ctx context.Context, cfg *config.Config, flags buildFlags, args []string) error {
	if flags.format {
		cfg.Build.Format = true
	}
	if flags.sourceMaps {
		cfg.Build.SourceMaps = true
	}
	if flags.noHeader {
		cfg.Build.Header = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := splitPaths(cfg, args)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := build.New(cfg, build.Options{
		Jobs: flags.jobs,
		OnProgress: func(f build.FileResult) {
			if f.Err == nil && f.Written {
				info("%s → %s", rel(cfg, f.Source), rel(cfg, f.Output))
			}
		},
	})

	if flags.clean {
		info("Removing generated files...")
		if err := clean(builder, files); err != nil {
			return err
		}
	}

	var res *build.Result
	if files != nil {
		res, err = builder.BuildFiles(ctx, files)
	} else {
		res, err = builder.Build(ctx)
	}
	if err != nil {
		return err
	}

	failed := res.Failed()
	for _, f := range failed {
		if flags.json {
			fmt.Fprintln(os.Stderr, errors.FromError(f.Err, nil, "X001").FormatJSON())
		} else {
			errors.Print(os.Stderr, f.Err)
		}
	}
	if len(failed) > 0 {
		return errors.New("X001").
			WithDetail(fmt.Sprintf("%d of %d files did not compile", len(failed), len(res.Files)))
	}

	if len(res.Files) == 0 {
		warn("No %s files found", gsx.Ext)
		return nil
	}
	success("Compiled %d files in %s", len(res.Files), res.Duration.Round(1000000))
	return nil
}

func clean(builder *build.Builder, files []string) error {
	if files == nil {
		return builder.Clean()
	}
	for _, f := range files {
		if err := builder.Remove(f); err != nil {
			return err
		}
	}
	return nil
}

// splitPaths turns arguments into an explicit file list. Directories
// replace the configured source directories. It returns nil files when
// the configured sources should be walked.
func splitPaths(cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, nil
	}
	var files, dirs []string
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		st, err := os.Stat(abs)
		if err != nil {
			return nil, errors.New("X001").WithDetail("Cannot read " + arg).Wrap(err)
		}
		switch {
		case st.IsDir():
			dirs = append(dirs, abs)
		case strings.HasSuffix(abs, gsx.Ext):
			files = append(files, abs)
		default:
			return nil, errors.New("X001").WithDetail(arg + " is not a " + gsx.Ext + " file")
		}
	}
	if len(dirs) == 0 {
		return files, nil
	}

	cfg.Source.Dirs = dirs
	found, err := build.New(cfg, build.Options{}).Sources()
	if err != nil {
		return nil, err
	}
	return append(files, found...), nil
}

// rel shortens path for display.
func rel(cfg *config.Config, path string) string {
	if r, err := filepath.Rel(cfg.Dir(), path); err == nil && !strings.HasPrefix(r, "..") {
		return r
	}
	return path
}
