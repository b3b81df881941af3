package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gauntletgallery/artlister/internal/analysis"
	"github.com/gauntletgallery/artlister/internal/automation"
	"github.com/gauntletgallery/artlister/internal/config"
	"github.com/gauntletgallery/artlister/internal/database"
	"github.com/gauntletgallery/artlister/internal/ebay"
	"github.com/gauntletgallery/artlister/internal/listing"
	"github.com/gauntletgallery/artlister/internal/pricing"
)

func main() {
	// Command line flags
	folder := flag.String("folder", "", "Folder of artwork images to process")
	jsonOut := flag.String("json", "", "Write generated listings to a JSON file")
	csvOut := flag.String("csv", "", "Write a bulk-upload CSV file")
	publish := flag.Bool("publish", false, "Publish generated listings to eBay")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *folder == "" {
		*folder = cfg.BatchFolder
	}
	if _, err := os.Stat(*folder); err != nil {
		log.Fatalf("Folder not accessible: %v", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

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
		RedirectURI:   cfg.EbayRedirectURI,
		Sandbox:       cfg.Sandbox(),
		MarketplaceID: cfg.MarketplaceID,
	}, tokenStore)

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

	opts := listing.DefaultOptions()
	opts.Currency = cfg.Currency
	opts.Location = cfg.ItemLocation
	opts.Quantity = cfg.DefaultQuantity

	publisher := automation.NewPublisher(ebayClient, db)
	pipeline := automation.NewPipeline(analyzer, pricing.NewEngine(tables), listing.NewBuilder(opts), db, publisher)

	summary, err := pipeline.ProcessFolder(context.Background(), *folder, automation.RunOptions{
		JSONOutput: *jsonOut,
		CSVOutput:  *csvOut,
		Publish:    *publish,
	})
	if err != nil {
		log.Fatalf("Batch run failed: %v", err)
	}

	fmt.Printf("Run %s: %d processed, %d failed", summary.RunID, summary.Processed, summary.Failed)
	if *publish {
		fmt.Printf(", %d published", summary.Published)
	}
	fmt.Printf(" in %s\n", summary.Duration.Round(time.Millisecond))

	for _, e := range summary.Errors {
		fmt.Printf("  %s: %s\n", e.File, e.Error)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
