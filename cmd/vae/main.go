package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lagoon-network/vae/internal/cache"
	"github.com/lagoon-network/vae/internal/config"
	"github.com/lagoon-network/vae/internal/datafetcher"
	"github.com/lagoon-network/vae/internal/engine"
	"github.com/lagoon-network/vae/internal/logger"
	"github.com/lagoon-network/vae/internal/state"
	"github.com/lagoon-network/vae/internal/web"
)

// main is the entry point for the vault analytics engine.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Vault Analytics Engine starting...")

	// Initialize Database Connection (analysis snapshot persistence)
	dbCfg := state.DBConfig{
		Host: config.DBHost, Port: config.DBPort,
		User: config.DBUser, Password: config.DBPassword,
		DBName: config.DBName, SSLMode: config.DBSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// --- 2. Build the engine and its dependencies ---
	resultCache, err := cache.New(time.Duration(config.CacheTTLSeconds) * time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create result cache")
	}
	defer resultCache.Close()

	fetcher := datafetcher.NewClient(config.GraphQLEndpoint)
	log.Info().Str("endpoint", config.GraphQLEndpoint).Msg("Indexer client initialized")

	eng, err := engine.NewEngine(engine.Config{
		Fetcher: fetcher,
		Cache:   resultCache,
		Persist: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create analytics engine")
	}

	// --- 3. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, eng)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting analytics API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 4. Wait for shutdown signal ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received, exiting")
}
