package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/selector"
	"github.com/ayusman/mudra/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr, staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				opts.cfg.Server.Addr = addr
			}

			st, err := opts.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			strategy, err := selector.ParseStrategy(opts.cfg.Selection.Strategy)
			if err != nil {
				return err
			}

			if staticDir == "" {
				staticDir = findWebDir()
			}
			if staticDir != "" {
				logging.Infof("serving static files from %s", staticDir)
			}

			runner := app.New(app.Config{
				Store:     st,
				Trainer:   opts.trainer(),
				Selection: opts.cfg.Selection,
				Logger:    logging.L(),
			})
			srv := server.New(server.Config{
				StaticDir: staticDir,
				Store:     st,
				Runner:    runner,
				Strategy:  strategy,
				Logger:    logging.L(),
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, opts.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&staticDir, "static", "", "Directory of static files to serve at /")

	return cmd
}

// findWebDir returns the first of "web" or ~/.mudra/web that exists, or ""
// when neither does.
func findWebDir() string {
	if info, err := os.Stat("web"); err == nil && info.IsDir() {
		if abs, err := filepath.Abs("web"); err == nil {
			return abs
		}
		return "web"
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
