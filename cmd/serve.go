package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annolab/margin/cli"
	"github.com/annolab/margin/internal/bridge"
	"github.com/annolab/margin/logging"
	"github.com/annolab/margin/pkg/panel"
	"github.com/spf13/cobra"
)

func NewServeCmd() *cobra.Command {
	var socketPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge daemon",
		Long: `Starts the engine and exposes it to local hosts over a unix
socket: JSON snapshot endpoints plus a websocket stream of session updates.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("serve")
			handler := cli.NewErrorHandler(GetVerbose(cmd))

			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return handler.Handle(err)
			}
			if socketPath == "" {
				socketPath = cfg.Bridge.Socket
			}

			if err := bridge.AcquirePidFile(cfg.Bridge.PidFile); err != nil {
				return handler.Handle(err)
			}
			defer bridge.ReleasePidFile(cfg.Bridge.PidFile)

			p, err := panel.New(cfg)
			if err != nil {
				return handler.Handle(err)
			}
			defer p.Close()

			// The bridge serves remote hosts, so the sync loop runs for
			// the daemon's whole lifetime.
			p.Show()

			srv := bridge.New(p)

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe(socketPath)
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				logger.WithField("signal", sig).Info("Shutting down")
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return handler.Handle(err)
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&socketPath, "socket", "", "Unix socket path (default from margin.yml)")
	return cmd
}
