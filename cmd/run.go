package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/tidal/internal/config"
	"github.com/bnema/tidal/internal/logger"
	"github.com/bnema/tidal/internal/server"
	"github.com/bnema/tidal/internal/session"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the compositor",
	Long:  `Start the compositor, listen for a window manager client, and run until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg := config.Get()
		if cfg.Logging.LogLevel != "" {
			logger.SetLevel(cfg.Logging.LogLevel)
		}

		// Fatal init failures end the process here, before the loop.
		srv, err := server.New(cfg, session.Noop{})
		if err != nil {
			return fmt.Errorf("failed to initialize compositor: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigc
			logger.Infof("received %s, shutting down", sig)
			cancel()
		}()

		return srv.Run(ctx)
	},
}
