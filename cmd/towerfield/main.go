// Package main is the entry point for the towerfield level editor.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/samdwyer/towerfield/internal/config"
	"github.com/samdwyer/towerfield/internal/game"
	"github.com/samdwyer/towerfield/internal/store"
	"github.com/samdwyer/towerfield/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $TOWERFIELD_CONFIG)")
	flag.Parse()

	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	setupOTelEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Editor will run without tracing")
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	st, err := store.Open(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open level store: %v", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("Error closing level store: %v", err)
		}
	}()

	g, err := game.New(cfg, st)
	if err != nil {
		log.Fatalf("Failed to initialize editor: %v", err)
	}

	if err := g.Run(ctx); err != nil {
		log.Printf("Editor error: %v", err)
	}
}

// setupOTelEnv points the OTLP exporter at Honeycomb when an API key is present.
func setupOTelEnv() {
	apiKey := os.Getenv("HONEYCOMB_TOWERFIELD_API_KEY")
	if apiKey == "" {
		return
	}
	dataset := os.Getenv("HONEYCOMB_TOWERFIELD_DATASET")
	if dataset == "" {
		dataset = "towerfield"
	}
	os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")
	os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
		fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
}
