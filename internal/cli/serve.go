package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repolens/internal/apiserver"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the question-answering HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := backend.Config()
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			logger := backend.Logger()

			addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
			apiSrv := apiserver.NewServer(addr, backend, logger)

			out := cmd.OutOrStdout()
			color.New(color.FgCyan, color.Bold).Fprintln(out, "repolens API")
			fmt.Fprintf(out, "   Listening: http://%s\n", addr)
			fmt.Fprintf(out, "   Gateway:   %s\n", cfg.Gateway.BaseURL)
			if cfg.History.Enabled {
				fmt.Fprintf(out, "   History:   %s\n", cfg.History.DBPath)
			}
			fmt.Fprintln(out)

			errCh := make(chan error, 1)
			go func() {
				if err := apiSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			select {
			case <-ctx.Done():
				logger.Info("received shutdown signal")
			case err := <-errCh:
				logger.Error("API server error", zap.Error(err))
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := apiSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("API server shutdown error", zap.Error(err))
			}
			logger.Info("repolens API stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 7420, "API server port")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "API server host")

	return cmd
}
