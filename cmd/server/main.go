package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"fleet-route-service/internal/adapters/cache"
	"fleet-route-service/internal/adapters/repositories"
	"fleet-route-service/internal/adapters/traveltime"
	"fleet-route-service/internal/api"
	"fleet-route-service/internal/config"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/platform/db"
	"fleet-route-service/internal/platform/metrics"
	"fleet-route-service/internal/ports"
	"fleet-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, GraphHopper, the chosen cache
// backend) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := getEnv("DB_PATH", "data/app.db")
	seedPath := getEnv("SEED_PATH", "data/seeds/stops.json")
	configPath := getEnv("FLEET_CONFIG", "data/fleet.yaml")
	port := getEnv("PORT", "8080")

	ghURL := os.Getenv("GRAPHHOPPER_URL")
	if strings.TrimSpace(ghURL) == "" {
		log.Fatal("GRAPHHOPPER_URL is required")
	}
	ghRate, err := strconv.ParseFloat(getEnv("GRAPHHOPPER_RPS", "50"), 64)
	if err != nil {
		log.Fatalf("invalid GRAPHHOPPER_RPS: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	sqliteDB, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer sqliteDB.Close()

	// Initialize schema and seed demo stops on startup for local runs.
	if err := initAndSeed(sqliteDB, seedPath); err != nil {
		log.Fatal(err)
	}

	provider, err := traveltime.NewGraphHopperProvider(ghURL, ghRate)
	if err != nil {
		log.Fatal(err)
	}

	travelCache, closeCache, err := openTravelCache(sqliteDB)
	if err != nil {
		log.Fatal(err)
	}
	if closeCache != nil {
		defer closeCache()
	}

	metrics.RegisterDefault()

	allocator := &services.Allocator{
		Matrix: &services.MatrixBuilder{
			Provider: provider,
			Cache:    travelCache,
			Workers:  cfg.Matrix.Workers,
			Retry: services.RetryPolicy{
				MaxAttempts: cfg.Matrix.RetryAttempts,
				Backoff:     cfg.Matrix.RetryBackoff(),
			},
		},
		Solver: solverConfig(cfg),
	}

	repo := repositories.NewSqliteStopRepository(sqliteDB)
	router := api.NewRouter(repo, allocator, cfg.Classes())

	// Timeouts are tuned for cold-cache matrix building (external API latency).
	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func solverConfig(cfg *config.Config) services.SolverConfig {
	return services.SolverConfig{
		StopServiceTime:     domain.Minutes(cfg.Solver.StopServiceTimeMinutes),
		SkipPenalty:         domain.Minutes(cfg.Solver.SkipPenaltyMinutes),
		SpanCostCoefficient: cfg.Solver.SpanCostCoefficient,
		TimeLimit:           cfg.Solver.TimeLimit(),
		MaxIterations:       cfg.Solver.MaxIterations,
		Seed:                cfg.Solver.Seed,
	}
}

func openDB(dbPath string) (*sql.DB, error) {
	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := sqliteDB.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return sqliteDB, nil
}

func initAndSeed(sqliteDB *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(sqliteDB); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(sqliteDB, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}

// openTravelCache selects the travel-time cache backend from
// CACHE_BACKEND: sqlite (default), postgres, redis, or none.
func openTravelCache(sqliteDB *sql.DB) (ports.TravelTimeCache, func(), error) {
	switch backend := getEnv("CACHE_BACKEND", "sqlite"); backend {
	case "sqlite":
		return cache.NewSqliteTravelTimeCache(sqliteDB), nil, nil
	case "postgres":
		databaseURL := os.Getenv("DATABASE_URL")
		if strings.TrimSpace(databaseURL) == "" {
			return nil, nil, fmt.Errorf("open travel cache: DATABASE_URL is required for the postgres backend")
		}
		pg, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open travel cache: %w", err)
		}
		return cache.NewSQLTravelTimeCache(pg), func() { pg.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: getEnv("REDIS_ADDR", "localhost:6379")})
		return cache.NewRedisTravelTimeCache(client, 0), func() { client.Close() }, nil
	case "none":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("open travel cache: unknown CACHE_BACKEND %q", backend)
	}
}
