package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Study calibration
	Neighbors        int    // k of the k-nearest-neighbor graph
	Permutations     int    // permutation trials for pseudo-significance
	Seed             int64  // recorded base seed for permutation tests
	FuzzyCalibration string // optional JSON calibration file, empty = shipped default
	AHPMatrix        string // optional comparison matrix CSV, empty = shipped default
}

// Load reads the configuration from environment variables with defaults
func Load() *Config {
	cfg := &Config{
		Port:             ":8080",
		DBPath:           "./data/riskindex.db",
		JWTSecret:        "change-me-in-production",
		Neighbors:        5,
		Permutations:     999,
		Seed:             20260112,
		FuzzyCalibration: os.Getenv("FUZZY_CALIBRATION"),
		AHPMatrix:        os.Getenv("AHP_MATRIX"),
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if k, err := strconv.Atoi(os.Getenv("NEIGHBOR_COUNT")); err == nil && k > 0 {
		cfg.Neighbors = k
	}
	if p, err := strconv.Atoi(os.Getenv("PERMUTATIONS")); err == nil && p > 0 {
		cfg.Permutations = p
	}
	if s, err := strconv.ParseInt(os.Getenv("PERMUTATION_SEED"), 10, 64); err == nil {
		cfg.Seed = s
	}

	return cfg
}
