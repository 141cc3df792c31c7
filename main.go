package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"bazaar-flipper/internal/api"
	"bazaar-flipper/internal/bazaar"
	"bazaar-flipper/internal/db"
	"bazaar-flipper/internal/logger"
)

var version = "dev"

func main() {
	port := flag.Int("port", 13370, "HTTP server port")
	flag.Parse()

	// Optional .env for BAZAAR_API_URL / BAZAAR_API_KEY / BAZAAR_DB
	godotenv.Load()

	logger.Banner(version)

	// Open SQLite database
	database, err := db.Open()
	if err != nil {
		logger.Error("DB", fmt.Sprintf("Failed to open database: %v", err))
		os.Exit(1)
	}
	defer database.Close()

	// Load config from SQLite
	cfg := database.LoadConfig()

	client := bazaar.NewClient()
	if !client.HealthCheck() {
		logger.Warn("API", "Bazaar API unreachable, scans will retry on demand")
	}

	srv := api.NewServer(cfg, client, database)

	// Seed the minion price cache from the last persisted refresh
	if prices, refreshedAt := database.LoadPrices(); len(prices) > 0 {
		srv.SeedPrices(prices, refreshedAt)
		logger.Info("DB", fmt.Sprintf("Loaded %d cached unit prices", len(prices)))
	}

	addr := fmt.Sprintf("127.0.0.1:%d", *port)
	logger.Server(addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("Server", fmt.Sprintf("Failed: %v", err))
		os.Exit(1)
	}
}
