package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	stdlog "log"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"employee-directory/internal/app"
	"employee-directory/internal/config"
	"employee-directory/internal/logger"
	"employee-directory/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer cancel()

	cfg, err := config.New(fetchConfigPath())
	if err != nil {
		stdlog.Fatalf("cannot initialize config: %v", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		stdlog.Fatalf("cannot initialize logger: %v", err)
	}
	defer log.Sync()

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal("cannot listen", zap.String("addr", addr), zap.Error(err))
	}

	if err := run(ctx, cfg, log, ln); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("application shutdown completed successfully")
}

// run serves the API on ln until ctx is done, then shuts down within
// cfg.HTTP.ShutdownTimeout. The first refresh runs in the background; the
// API answers 503 until a cycle succeeds.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dir, err := app.NewRefresher(ctx, cfg, log)
	if err != nil {
		ln.Close()
		return fmt.Errorf("cannot initialize directory: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := dir.Refresh(ctx); err != nil && ctx.Err() == nil {
			log.Warn("initial refresh failed", zap.Error(err))
		}
		dir.Loop(ctx, cfg.Directory.RefreshInterval)
	}()

	srv := http.Server{
		Handler: server.NewRouter(dir, log, &cfg.Logger, cfg.HTTP.Timeout),
	}

	log.Info("starting http server", zap.String("addr", ln.Addr().String()))
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("received shutdown signal")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", zap.Error(err))
	}
	for range serveErr {
	}

	cancel()
	wg.Wait()
	return runErr
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config_path", "", "Path to the config file (optional, env overrides it)")
	flag.Parse()

	return path
}
