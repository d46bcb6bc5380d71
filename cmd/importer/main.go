package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/andresuchdata/chainopt/internal/config"
	"github.com/andresuchdata/chainopt/internal/ingest"
	"github.com/andresuchdata/chainopt/internal/repository/postgres"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize Google Drive service
	driveService, err := ingest.NewDriveService(cfg.Importer.DriveCredentials)
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	// Initialize Database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories and the import service
	productRepo := postgres.NewProductRepository(db)
	salesRepo := postgres.NewSalesRepository(db)
	importService := ingest.NewService(driveService, productRepo, salesRepo)

	// Register routes
	r := mux.NewRouter()
	handler := ingest.NewHandler(driveService, importService)
	handler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Importer.Port)
	log.Printf("Importer starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
