package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/brandkit/internal/api"
	"github.com/matzehuels/brandkit/pkg/batch"
	"github.com/matzehuels/brandkit/pkg/compose"
)

// serveCommand creates the "serve" command: run the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the brand kit HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			appCfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				appCfg.Server.Addr = addr
			}

			store, err := c.newStore(ctx, appCfg)
			if err != nil {
				return err
			}
			defer store.Close()

			compositor := compose.New(c.newDecoder(false),
				compose.WithMapper(appCfg.Mapper()),
				compose.WithLogger(c.Logger),
			)
			orchestrator := batch.New(compositor,
				batch.WithConcurrency(appCfg.Batch.Concurrency),
				batch.WithMaxImages(appCfg.Batch.MaxImages),
				batch.WithAutoSquareCrop(appCfg.Batch.AutoSquareCrop),
				batch.WithLogger(c.Logger),
			)
			server := api.NewServer(store, compositor, orchestrator, api.WithLogger(c.Logger))

			httpServer := &http.Server{
				Addr:              appCfg.Server.Addr,
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("listening", "addr", appCfg.Server.Addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					return err
				}
				c.Logger.Info("shut down cleanly")
				return nil
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
