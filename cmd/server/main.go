package main

import (
	"log"

	"github.com/floodgrid/substation-risk-go/internal/api"
	"github.com/floodgrid/substation-risk-go/internal/config"
	"github.com/floodgrid/substation-risk-go/internal/database"

	// Import the analysis package to register the analyzers
	_ "github.com/floodgrid/substation-risk-go/internal/analysis"
)

func main() {
	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	router, err := api.SetupRouter(database.GetDB(), cfg)
	if err != nil {
		log.Fatal("Failed to set up router:", err)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
