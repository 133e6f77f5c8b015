// ====================================
// File: cmd/tracker/main.go
// ====================================
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/eldarmuradov/solana-wallet-tracker/internal/logger"
	"github.com/eldarmuradov/solana-wallet-tracker/internal/tracker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()
	log.WithComponent("main").Info("Starting wallet tracker")

	configPath := "configs/config.json"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	runner := tracker.NewRunner(log)
	if err := runner.Initialize(configPath); err != nil {
		log.Fatal("Failed to initialize tracker", zap.Error(err))
	}

	if err := runner.Run(ctx); err != nil {
		log.Fatal("Tracker execution error", zap.Error(err))
	}
}
