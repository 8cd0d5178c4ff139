package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fluxplot/fluxplot/internal/server"
	"github.com/fluxplot/fluxplot/pkg/cache"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var scenarioDir string
	var redisAddr string
	var cacheDirFlag string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scenarios and rendered balances over HTTP",
		Long: `Serve starts an HTTP server exposing the scenarios in a
directory: a JSON listing, topology graphs, and on-demand balance
figures per bus.

Rendered artifacts are cached in Redis when --redis is given, in a
file cache under the user cache directory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, scenarioDir, redisAddr, cacheDirFlag, ttl)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&scenarioDir, "scenarios", "examples", "directory holding scenario subdirectories")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the artifact cache (host:port)")
	cmd.Flags().StringVar(&cacheDirFlag, "cache", "", "directory for the file-cache fallback (default the user cache dir)")
	cmd.Flags().DurationVar(&ttl, "ttl", server.DefaultTTL, "cache TTL for rendered artifacts")
	return cmd
}

// newServeCache picks the server's artifact cache backend: Redis when
// configured, otherwise a file cache so an unconfigured server still
// avoids re-rendering on every request.
func newServeCache(ctx context.Context, redisAddr, dir string, logger *log.Logger) (cache.Cache, error) {
	if redisAddr != "" {
		store, err := cache.NewRedisCache(ctx, redisAddr)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis artifact cache", "addr", redisAddr)
		return store, nil
	}

	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			logger.Warn("No cache directory available; caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("Using file artifact cache", "dir", dir)
	return store, nil
}

func (c *CLI) runServe(ctx context.Context, addr, scenarioDir, redisAddr, cacheDirFlag string, ttl time.Duration) error {
	logger := c.Logger

	store, err := newServeCache(ctx, redisAddr, cacheDirFlag, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := server.New(server.Config{
		ScenarioDir: scenarioDir,
		Cache:       store,
		Logger:      logger,
		TTL:         ttl,
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", addr, "scenarios", scenarioDir)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
