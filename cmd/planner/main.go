package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"fleet-route-service/internal/adapters/traveltime"
	"fleet-route-service/internal/config"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/generate"
	"fleet-route-service/internal/present"
	"fleet-route-service/internal/services"
)

// planner is a one-shot CLI: load or generate stops, allocate them
// across the configured fleet, print a Google Maps link per route and
// optionally write a GeoJSON plot.
func main() {
	configPath := flag.String("config", "data/fleet.yaml", "fleet configuration file")
	stopsPath := flag.String("stops", "", "JSON file with stops to plan ([{\"lat\":..,\"lon\":..}, ...])")
	generateN := flag.Int("generate", 0, "generate this many random stops instead of reading a file")
	generateSeed := flag.Int64("generate-seed", 1, "seed for random stop generation")
	outPath := flag.String("out", "", "write the plan as GeoJSON to this file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ghURL := os.Getenv("GRAPHHOPPER_URL")
	if strings.TrimSpace(ghURL) == "" {
		log.Fatal("GRAPHHOPPER_URL is required")
	}
	ghRate, err := strconv.ParseFloat(getEnv("GRAPHHOPPER_RPS", "50"), 64)
	if err != nil {
		log.Fatalf("invalid GRAPHHOPPER_RPS: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	stops, err := loadStops(*stopsPath, *generateN, *generateSeed)
	if err != nil {
		log.Fatal(err)
	}
	if len(stops) == 0 {
		log.Fatal("no stops: pass -stops or -generate")
	}
	log.Printf("planning stops=%d classes=%d", len(stops), len(cfg.Fleet))

	provider, err := traveltime.NewGraphHopperProvider(ghURL, ghRate)
	if err != nil {
		log.Fatal(err)
	}

	allocator := &services.Allocator{
		Matrix: &services.MatrixBuilder{
			Provider: provider,
			Workers:  cfg.Matrix.Workers,
			Retry: services.RetryPolicy{
				MaxAttempts: cfg.Matrix.RetryAttempts,
				Backoff:     cfg.Matrix.RetryBackoff(),
			},
		},
		Solver: services.SolverConfig{
			StopServiceTime:     domain.Minutes(cfg.Solver.StopServiceTimeMinutes),
			SkipPenalty:         domain.Minutes(cfg.Solver.SkipPenaltyMinutes),
			SpanCostCoefficient: cfg.Solver.SpanCostCoefficient,
			TimeLimit:           cfg.Solver.TimeLimit(),
			MaxIterations:       cfg.Solver.MaxIterations,
			Seed:                cfg.Solver.Seed,
		},
	}

	assignment, err := allocator.Allocate(context.Background(), cfg.Classes(), stops)
	if err != nil {
		log.Fatal(err)
	}

	for _, link := range present.Links(*assignment) {
		fmt.Printf("%s %s\n  %s\n", link.Class, link.Vehicle, link.URL)
	}
	if len(assignment.Remaining) > 0 {
		fmt.Printf("unserviced stops: %d\n", len(assignment.Remaining))
		for _, s := range assignment.Remaining {
			fmt.Printf("  %.6f,%.6f\n", s.Lat, s.Lon)
		}
	}

	if *outPath != "" {
		if err := writeGeoJSON(*outPath, *assignment); err != nil {
			log.Fatal(err)
		}
		log.Printf("plan written path=%s", *outPath)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadStops(path string, n int, seed int64) ([]domain.Location, error) {
	if n > 0 {
		rng := rand.New(rand.NewSource(seed))
		return generate.RandomStops(rng, generate.AarhusBox, n), nil
	}
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load stops: %w", err)
	}
	var raw []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("load stops: parse %q: %w", path, err)
	}
	stops := make([]domain.Location, 0, len(raw))
	for i, s := range raw {
		if s.Lat < -90 || s.Lat > 90 || s.Lon < -180 || s.Lon > 180 {
			return nil, fmt.Errorf("load stops: stop %d has out-of-range coordinates", i)
		}
		stops = append(stops, domain.Location{Lat: s.Lat, Lon: s.Lon})
	}
	return stops, nil
}

func writeGeoJSON(path string, a domain.Assignment) error {
	fc := present.GeoJSON(a)
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}
