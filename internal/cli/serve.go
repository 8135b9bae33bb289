package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/planbiir/gpxpack/internal/config"
	"github.com/planbiir/gpxpack/internal/logger"
	"github.com/planbiir/gpxpack/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := cfg
		if serveAddr != "" {
			c.ServerAddr = serveAddr
		}

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(signals)

		return Serve(cmd.Context(), c, signals, nil)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// ListenFunc starts app on addr and blocks until it stops.
type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

// Serve starts the HTTP server and waits for a signal, ctx cancellation or a
// listener failure, then shuts the server down.
func Serve(ctx context.Context, c config.Config, signals <-chan os.Signal, listen ListenFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if listen == nil {
		listen = defaultListen
	}

	log := logger.L().With().Str("component", "server").Logger()
	srv := server.NewServer(c, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, c.ServerAddr)
	}()
	log.Info().Str("addr", c.ServerAddr).Msg("listening")

	select {
	case sig := <-signals:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.App.ShutdownWithContext(shutdownCtx)
}
