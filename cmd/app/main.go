package main

import (
	"flag"
	"log"
	"os"

	"github.com/NimaArnar/CryptoMarket-Dashboard/internal/di"
	"github.com/NimaArnar/CryptoMarket-Dashboard/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s api=%s cache=%s concurrent=%t max_concurrent=%d",
		cfg.Environment, cfg.CoinGecko.BaseURL, cfg.Cache.Backend, cfg.Fetch.Concurrent, cfg.Fetch.MaxConcurrent)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Blocks until SIGINT/SIGTERM.
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
