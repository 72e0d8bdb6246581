package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"github.com/vango-dev/hyperdom/internal/build"
	"github.com/vango-dev/hyperdom/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port        int
		host        string
		static      string
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Compile on change and reload the browser",
		Long: `Start the development server.

The server compiles every .gsx file, then watches the source
directories and recompiles files as they change. Pages that load
/_hyper/client.js reload after each successful build and show an
overlay while a file does not compile.

Examples:
  hyperc dev
  hyperc dev --port=8080 --static=public
  hyperc dev --host=0.0.0.0 --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if host != "" {
				cfg.Dev.Host = host
			}
			if static != "" {
				cfg.Dev.Static = static
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := dev.NewServer(dev.ServerOptions{
				Config: cfg,
				Logger: slog.Default(),
				OnBuild: func(res *build.Result) {
					if n := len(res.Failed()); n > 0 {
						warn("%d of %d files did not compile", n, len(res.Files))
						return
					}
					success("Compiled %d files in %s", len(res.Files), res.Duration.Round(time.Millisecond))
				},
			})

			fmt.Println()
			info("hyperc dev %s", version)
			info("Watching %v", cfg.SourceDirs())
			fmt.Println()

			if openBrowser {
				go openWhenListening(ctx, server)
			}
			return server.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from hyperc.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from hyperc.json)")
	cmd.Flags().StringVar(&static, "static", "", "Directory served at /")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open the browser once the server listens")

	return cmd
}

// openWhenListening opens the server URL in the default browser as soon as
// the listener is up.
func openWhenListening(ctx context.Context, server *dev.Server) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			addr := server.Addr()
			if addr == nil {
				continue
			}
			url := "http://" + addr.String()
			if err := open.Run(url); err != nil {
				warn("Cannot open %s: %v", url, err)
			}
			return
		}
	}
}
