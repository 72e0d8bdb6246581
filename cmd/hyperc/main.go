package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/hyperdom/internal/config"
	"github.com/vango-dev/hyperdom/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Flags shared by every command.
var (
	configPath string
	verbose    bool
	noColor    bool
)

// colors is false when stderr is not a terminal or --no-color was given.
var colors = true

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hyperc",
		Short: "Compile .gsx markup to hyperscript calls",
		Long: `hyperc compiles Go source files with embedded markup (.gsx) into
plain Go that builds DOM nodes through the hyper package.

  <div class="card">{title}</div>

becomes

  h.H("div", h.Props{{Key: "class", Value: "card"}}, title)

Generated files keep the line numbers of their source, so compiler
errors and stack traces point at the .gsx file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setup()
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to "+config.ConfigFileName+" (default: nearest in a parent directory)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newCmd(),
		buildCmd(),
		devCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}

// setup configures logging and colors from the global flags.
func setup() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	colors = !noColor && term.IsTerminal(int(os.Stderr.Fd()))
	if colors {
		errors.EnableColors()
	} else {
		errors.DisableColors()
	}
}

// loadConfig reads --config, or the nearest hyperc.json, or defaults rooted
// at the working directory.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := config.FindProjectRoot(wd)
	if err != nil {
		return config.LoadOrDefault(wd)
	}
	return config.Load(root)
}

func paint(code, s string) string {
	if !colors {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("%s %s\n", paint("32", "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("%s %s\n", paint("33", "⚠"), fmt.Sprintf(format, args...))
}
