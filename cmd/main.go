package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"roomchat/infrastructure/grpc"
	"roomchat/infrastructure/server"
	"roomchat/internal"
	"roomchat/observability"
	"roomchat/projection"
	"roomchat/repositories"
	"roomchat/runtime"
	"roomchat/runtime/workers"
	"roomchat/services"
	"roomchat/sink"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a server failure.
// Returning instead of exiting lets the deferred cleanup close the store.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & services
	messageRepository := repositories.NewMessageRepository(db, log)
	history := services.NewHistoryService(messageRepository, log,
		config.HistoryLimit, config.HistoryMaxLimit, config.StoreTimeout)
	directory := services.NewRoomDirectory(repositories.NewRoomRepository(db), log,
		config.BaseURL, config.StoreTimeout)

	// 4. Supervision & orchestration
	monitor := observability.NewMonitoringManager(log)
	activity := projection.NewRoomActivity()
	healthServer := grpc.NewHealthServer(log)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log, config.RestartInterval),
		history, directory, runtime.OrchestratorConfig{
			BufferSize:         config.BufferSize,
			SinkTimeout:        config.SinkTimeout,
			HistoryLimit:       config.HistoryLimit,
			LegacyBroadcastAll: config.LegacyBroadcastAll,
		})
	orchestrator.
		Add(sink.NewPresenceSink(repositories.NewPresenceRepository(db), log), activity).
		AddWorkers(
			workers.NewValueLogGCWorker(log, db, config.GCInterval),
			workers.NewHealthMonitoringWorker(log, monitor, messageRepository.Ping, healthServer, config.HealthInterval),
		)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}
	defer orchestrator.Stop()

	// 6. Servers
	httpServer := server.NewServer(log, server.Config{
		FrontendURL:          config.FrontendURL,
		ConnectionBufferSize: config.ConnectionBufferSize,
		PingInterval:         config.PingInterval,
		WriteTimeout:         config.WriteTimeout,
		MaxMessageSize:       config.MaxMessageSize,
	}, orchestrator, history, directory, monitor, activity)

	grpcAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcPort)
	grpcListener, err := net.Listen("tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", grpcAddress, err)
	}

	errChan := make(chan error, 2)
	go func() {
		if err := healthServer.Serve(grpcListener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		if err := httpServer.Listen(fmt.Sprintf("%s:%d", config.Host, config.Port)); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		healthServer.Stop()
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", "error", err)
	}
	healthServer.Stop()
	log.Info("Program stopped cleanly")
	return nil
}
