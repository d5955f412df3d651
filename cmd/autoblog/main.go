package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/nexustopic/autoblog/internal/app"
	"github.com/nexustopic/autoblog/internal/config"
	"github.com/nexustopic/autoblog/internal/logger"
	"github.com/nexustopic/autoblog/internal/metrics"
)

type cliOptions struct {
	Articles  int      `long:"articles" default:"3" description:"Number of articles to generate"`
	Markets   []string `long:"markets" description:"Google Trends market codes (overrides config file)"`
	Config    string   `long:"config" default:"configs/config.yaml" description:"Path to the YAML config file"`
	NoAdSense bool     `long:"no-adsense" description:"Skip ad insertion"`
	NoImages  bool     `long:"no-images" description:"Skip cover images"`
	Output    string   `long:"output" description:"Output directory for article JSON (overrides config)"`
}

func main() {
	godotenv.Load()
	logger.Init()

	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	a := app.New(cfg, app.Options{
		Articles:  opts.Articles,
		Markets:   opts.Markets,
		NoAdSense: opts.NoAdSense,
		NoImages:  opts.NoImages,
		OutputDir: opts.Output,
	})

	if err := a.Run(context.Background()); err != nil {
		logger.Error("Pipeline failed", "error", err)
		os.Exit(1)
	}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("Starting monitoring server", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("Monitoring server error", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}
