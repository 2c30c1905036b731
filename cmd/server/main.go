// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/go-spacewar/pkg/ai"
	"github.com/opd-ai/go-spacewar/pkg/config"
	"github.com/opd-ai/go-spacewar/pkg/engine"
	"github.com/opd-ai/go-spacewar/pkg/health"
	"github.com/opd-ai/go-spacewar/pkg/logging"
	"github.com/opd-ai/go-spacewar/pkg/network"
)

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	aiShips := flag.Int("ai", 0, "Number of AI-controlled ships in the world")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	var gameConfig *config.GameConfig
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "configuration file not found, using defaults",
			"config_path", *configPath,
		)
		gameConfig = config.DefaultConfig()
	} else {
		gameConfig, err = config.LoadConfig(*configPath)
		if err != nil {
			logger.Error(ctx, "failed to load configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
	}

	if err := config.ApplyEnvironmentOverrides(gameConfig); err != nil {
		logger.Error(ctx, "failed to apply environment configuration", err)
		os.Exit(1)
	}

	// A networked game starts with no pre-made ships; players bring
	// their own, plus any AI ships requested on the command line.
	gameConfig.Ships = *aiShips
	game := engine.New(gameConfig, nil)
	for _, ship := range game.Ships {
		game.Controllers = append(game.Controllers, ai.NewPilot(ship))
	}

	server := network.NewServer(game, &gameConfig.Network)

	healthChecker := health.NewChecker()
	healthChecker.AddCheck(health.NewTickCheck(
		func() float64 { return float64(server.Tick()) },
		10*time.Second,
	))
	healthChecker.AddCheck(health.NewListenerCheck(server.Addr))

	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", healthChecker.LivenessHandler)
	healthMux.HandleFunc("/ready", healthChecker.ReadinessHandler)

	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", gameConfig.Network.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info(ctx, "starting health check server",
			"port", gameConfig.Network.HealthPort,
		)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "health check server failed", err)
		}
	}()

	address := fmt.Sprintf("%s:%d", gameConfig.Network.ServerAddress, gameConfig.Network.ServerPort)
	logger.Info(ctx, "starting server",
		"address", address,
		"max_clients", gameConfig.Network.MaxClients,
		"ai_ships", *aiShips,
		"seed", gameConfig.Seed,
	)
	if err := server.Start(address); err != nil {
		logger.Error(ctx, "failed to start server", err,
			"address", address,
		)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info(ctx, "shutting down server")

	envConfig, err := config.LoadConfigFromEnv()
	shutdownTimeout := 30 * time.Second
	if err == nil {
		shutdownTimeout = envConfig.ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "health check server shutdown failed", err)
	}

	server.Stop()
}
