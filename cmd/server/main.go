package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gauntletgallery/artlister/internal/analysis"
	"github.com/gauntletgallery/artlister/internal/automation"
	"github.com/gauntletgallery/artlister/internal/config"
	"github.com/gauntletgallery/artlister/internal/database"
	"github.com/gauntletgallery/artlister/internal/ebay"
	"github.com/gauntletgallery/artlister/internal/handlers"
	"github.com/gauntletgallery/artlister/internal/listing"
	"github.com/gauntletgallery/artlister/internal/pricing"
)

func main() {
	// Command line flags
	port := flag.String("port", "8080", "Server port")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redirectURI := cfg.EbayRedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:" + *port + "/api/oauth/callback"
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Token storage, optionally encrypted at rest
	tokenStore := &ebay.FileStore{Path: cfg.TokenFilePath}
	if cfg.TokenKey != "" {
		cipher, err := database.NewSecretCipher(cfg.TokenKey)
		if err != nil {
			log.Fatalf("Invalid EBAY_TOKEN_KEY: %v", err)
		}
		tokenStore.Cipher = cipher
	}

	ebayClient := ebay.NewClient(ebay.Config{
		ClientID:      cfg.EbayClientID,
		ClientSecret:  cfg.EbayClientSecret,
		RedirectURI:   redirectURI,
		Sandbox:       cfg.Sandbox(),
		MarketplaceID: cfg.MarketplaceID,
	}, tokenStore)

	// Vision analysis falls back to the mock provider without an API key
	var analyzer *analysis.Service
	if cfg.VisionAPIKey != "" {
		analyzer = analysis.NewService(
			analysis.NewHTTPProvider("grok-vision", cfg.VisionAPIBase, cfg.VisionAPIKey, "grok-2-vision"),
		)
	} else {
		log.Println("WARNING: VISION_API_KEY not set - using mock analysis provider")
		analyzer = analysis.NewService(&analysis.MockProvider{})
	}

	tables := pricing.DefaultTables()
	if cfg.TablesPath != "" {
		tables, err = pricing.LoadTables(cfg.TablesPath)
		if err != nil {
			log.Printf("Failed to load pricing tables, using defaults: %v", err)
		}
	}
	engine := pricing.NewEngine(tables)

	opts := listing.DefaultOptions()
	opts.Currency = cfg.Currency
	opts.Location = cfg.ItemLocation
	opts.Quantity = cfg.DefaultQuantity
	builder := listing.NewBuilder(opts)

	publisher := automation.NewPublisher(ebayClient, db)
	pipeline := automation.NewPipeline(analyzer, engine, builder, db, publisher)

	sessions := database.NewSessionStore(db, []byte(cfg.SessionKey))

	// Create handlers
	h := handlers.NewHandler(db, ebayClient, sessions, analyzer, engine, builder, pipeline, publisher, cfg.BatchFolder)

	// Set up routes
	mux := http.NewServeMux()

	// API routes
	mux.HandleFunc("/api/health", h.HealthCheck)
	mux.HandleFunc("/api/auth/url", h.GetAuthURL)
	mux.HandleFunc("/api/auth/status", h.GetAuthStatus)
	mux.HandleFunc("/api/oauth/callback", h.OAuthCallback)
	mux.HandleFunc("/api/analyze", h.AnalyzeImage)
	mux.HandleFunc("/api/estimate", h.EstimatePrice)
	mux.HandleFunc("/api/listings/preview", h.PreviewListing)
	mux.HandleFunc("/api/listings/create", h.CreateListing)
	mux.HandleFunc("/api/listings/publish", h.PublishListing)
	mux.HandleFunc("/api/listings", h.GetListings)
	mux.HandleFunc("/api/listings/export", h.ExportCSV)
	mux.HandleFunc("/api/batch", h.RunBatch)
	mux.HandleFunc("/api/runs", h.GetRunHistory)
	mux.HandleFunc("/api/policies/fulfillment", h.GetFulfillmentPolicies)
	mux.HandleFunc("/api/policies/payment", h.GetPaymentPolicies)
	mux.HandleFunc("/api/policies/return", h.GetReturnPolicies)
	mux.HandleFunc("/api/settings", h.GetSettings)
	mux.HandleFunc("/api/settings/update", h.UpdateSetting)

	// Scheduled batch runs and session cleanup
	scheduler := automation.NewScheduler(pipeline, sessions, cfg.BatchFolder, automation.RunOptions{})
	if err := scheduler.Start(context.Background(), cfg.BatchCron); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Start server
	addr := ":" + *port
	log.Printf("Starting %s listing server on http://localhost%s", cfg.GalleryName, addr)
	log.Printf("Environment: %s, marketplace: %s", cfg.Environment, cfg.MarketplaceID)

	if cfg.EbayClientID == "" {
		log.Println("WARNING: EBAY_CLIENT_ID not set - eBay API calls will fail")
	}

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	if err := server.Shutdown(context.Background()); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
