// Command tbd is the taskbook sync server daemon.
// It serves the namespaced key-value API the remote backend speaks, storing
// values as flat files under the data directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zcong1993/taskbook/internal/version"
	"github.com/zcong1993/taskbook/server"
)

var (
	addr     = flag.String("addr", ":9191", "listen address")
	dataDir  = flag.String("data", "./data", "directory values are persisted under")
	token    = flag.String("token", os.Getenv("TBD_TOKEN"), "bearer auth token (or $TBD_TOKEN)")
	logLevel = flag.String("log-level", "debug", "log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(*logLevel),
	}))

	logger.Info("starting tbd",
		"version", version.Version,
		"commit", version.Commit,
	)

	srv, err := server.New(server.Options{
		Addr:    *addr,
		Token:   *token,
		DataDir: *dataDir,
		Version: version.Version,
	}, logger)
	if err != nil {
		log.Fatalf("Failed to configure server: %v", err)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	fmt.Printf("taskbook sync server running on %s\n", *addr)
	fmt.Printf("Version: %s (%s)\n", version.Version, version.Commit)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("server stop error", "error", err)
	}
	fmt.Println("Shutdown complete")
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
