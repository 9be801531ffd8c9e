package cli

import (
	gocontext "context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/worrybox/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var addr string
	var noHTTP bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Deliver notifications and serve the HTTP action endpoint",
		Long: `Run in the foreground until interrupted.

The dispatcher prints each due notification to the terminal and unlocks
the worry. The HTTP server accepts notification actions at
POST /notifications/actions and exposes /worries, /healthz and /metrics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(gocontext.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := wire.Logger()
			if addr == "" {
				addr = wire.Config().HTTPAddr
			}

			errCh := make(chan error, 2)
			var srv *http.Server
			if !noHTTP {
				srv = &http.Server{
					Addr:              addr,
					Handler:           wire.HTTPHandler(),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					logger.Info().Str("addr", addr).Msg("http server listening")
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- fmt.Errorf("http server: %w", err)
					}
				}()
			}

			dispatcher := wire.Dispatcher(cmd.OutOrStdout())
			go func() {
				if err := dispatcher.Run(ctx); err != nil && !errors.Is(err, gocontext.Canceled) {
					errCh <- err
					return
				}
				errCh <- nil
			}()

			var runErr error
			select {
			case <-ctx.Done():
			case runErr = <-errCh:
				stop()
			}

			if srv != nil {
				shutdownCtx, cancel := gocontext.WithTimeout(gocontext.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn().Err(err).Msg("http shutdown")
				}
			}
			logger.Info().Msg("stopped")
			return runErr
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config)")
	cmd.Flags().BoolVar(&noHTTP, "no-http", false, "Only run the notification dispatcher")
	return cmd
}
