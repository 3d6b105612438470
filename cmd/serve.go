package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krehermann/stackvm/api"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "serve the http evaluation api",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.newEvaluator()
			if err != nil {
				return err
			}
			srv, err := api.NewServer(api.ServerConfig{
				ListenerAddr: a.cfg.API.ListenAddr,
				MaxBody:      a.cfg.API.MaxBody,
				Logger:       a.logger,
			}, e)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errChan := make(chan error, 1)
			go func() {
				errChan <- srv.Start()
			}()

			select {
			case err := <-errChan:
				return err
			case <-ctx.Done():
				a.logger.Info("received signal, shutting down",
					zap.Uint64("runs", e.Runs()))
			}

			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		},
	}

	c.Flags().String("addr", ":8080", "http listen address")
	a.v.BindPFlag("api.listen_addr", c.Flags().Lookup("addr"))

	c.Flags().String("max-body", "1M", "request body limit, e.g. 512K")
	a.v.BindPFlag("api.max_body", c.Flags().Lookup("max-body"))

	c.Flags().Int("store-size", 256, "receipts kept for lookup, 0 keeps all")
	a.v.BindPFlag("store.size", c.Flags().Lookup("store-size"))

	return c
}
