package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/wtask/relay/internal/logging"
	"github.com/wtask/relay/internal/ops"
	"github.com/wtask/relay/internal/relay"
	"github.com/wtask/relay/internal/relay/broker"
	"github.com/wtask/relay/internal/relay/config"
	"github.com/wtask/relay/internal/relay/hub"
)

func setupRuntime() *config.Runtime {
	rt, err := config.LoadRuntime()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load runtime settings: %v", err)
	}
	return rt
}

func setupConfig() *config.Config {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Config loaded", "path", ConfigPath, "central_ip_port", cfg.CentralIPPort)
	return cfg
}

func setupOps(addr string, b *broker.Broker, clock clockwork.Clock) *ops.Server {
	if addr == "" {
		return nil
	}
	srv, err := ops.NewServer(addr, b, clock)
	if err != nil {
		slog.Error("Failed to create ops server", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("Ops server failed", "addr", addr, "error", err)
		}
	}()
	slog.Info("Ops endpoint started", "addr", addr)
	return srv
}

func main() {
	clock := clockwork.NewRealClock()

	rt := setupRuntime()
	logger := logging.InitLogger(rt.LogLevel, rt.LogFormat)
	logger.Info("Relay starting", "binary", BinaryName, "version", Version)

	cfg := setupConfig()

	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		slog.Error("Unable to listen TCP", "addr", cfg.Addr(), "error", err)
		os.Exit(1)
	}

	h, err := hub.New(hub.WithCapacity(hub.DefaultCapacity))
	if err != nil {
		slog.Error("Can't create hub", "error", err)
		listener.Close()
		os.Exit(1)
	}
	b, err := broker.New(h, broker.WithLogger(logger), broker.WithClock(clock))
	if err != nil {
		slog.Error("Can't create broker", "error", err)
		listener.Close()
		os.Exit(1)
	}
	server, err := relay.NewServer(b, relay.WithLogger(logger), relay.WithClock(clock))
	if err != nil {
		slog.Error("Can't start relay server", "error", err)
		listener.Close()
		os.Exit(1)
	}

	opsServer := setupOps(rt.MetricsAddr, b, clock)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	served := make(chan error, 1)
	go func() {
		served <- server.Serve(listener)
	}()
	slog.Info("Relay started", "addr", listener.Addr().String())

	exitCode := 0
	select {
	case <-sig:
		slog.Info("Got stop signal")
	case err := <-served:
		slog.Error("Relay stopped accepting", "error", err)
		exitCode = 1
	}

	if opsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := opsServer.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Ops server shutdown error", "error", err)
		}
		cancel()
	}
	slog.Info("Relay stopped, bye", "took", server.Shutdown(10*time.Second).String())
	os.Exit(exitCode)
}
