// Package automation drives the batch pipeline: scan a folder of
// artwork images, analyze and price each one, build listings, persist
// them, and optionally publish to eBay.
package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gauntletgallery/artlister/internal/analysis"
	"github.com/gauntletgallery/artlister/internal/database"
	"github.com/gauntletgallery/artlister/internal/listing"
	"github.com/gauntletgallery/artlister/internal/pricing"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// ItemError records one failed image in a run.
type ItemError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// RunSummary is the outcome of one folder run.
type RunSummary struct {
	RunID     string             `json:"run_id"`
	Processed int                `json:"processed"`
	Failed    int                `json:"failed"`
	Published int                `json:"published,omitempty"`
	Listings  []*listing.Listing `json:"listings"`
	Errors    []ItemError        `json:"errors,omitempty"`
	Duration  time.Duration      `json:"-"`
}

// RunOptions controls a folder run.
type RunOptions struct {
	JSONOutput string
	CSVOutput  string
	Publish    bool
}

// Pipeline wires the analysis, pricing, listing, and storage stages
// together. Publisher is optional; without it Publish requests fail
// per item.
type Pipeline struct {
	analyzer  *analysis.Service
	engine    *pricing.Engine
	builder   *listing.Builder
	db        *database.DB
	publisher *Publisher
}

// NewPipeline builds a pipeline over the given stages.
func NewPipeline(analyzer *analysis.Service, engine *pricing.Engine, builder *listing.Builder, db *database.DB, publisher *Publisher) *Pipeline {
	return &Pipeline{
		analyzer:  analyzer,
		engine:    engine,
		builder:   builder,
		db:        db,
		publisher: publisher,
	}
}

// ProcessImage runs one image through analyze, price, and build, and
// stores the resulting draft listing.
func (p *Pipeline) ProcessImage(ctx context.Context, imagePath string) (*listing.Listing, error) {
	start := time.Now()

	result, err := p.analyzer.Analyze(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	est := p.engine.Estimate(result.Analysis.PricingAttributes())
	l := p.builder.Build(result, est, nil, time.Since(start))

	if err := p.saveListing(l, imagePath); err != nil {
		return nil, err
	}
	return l, nil
}

// ProcessFolder processes every image in a folder sequentially. One
// bad image never stops the run; its error is collected and the run
// continues. The run is recorded in run_history.
func (p *Pipeline) ProcessFolder(ctx context.Context, folder string, opts RunOptions) (*RunSummary, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			images = append(images, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(images)

	runType := "batch"
	if opts.Publish {
		runType = "publish"
	}
	run := &database.RunRecord{
		RunID:     uuid.NewString(),
		RunType:   runType,
		Status:    "running",
		StartedAt: time.Now(),
	}
	if err := p.db.CreateRun(run); err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	summary := &RunSummary{RunID: run.RunID}
	start := time.Now()

	for _, imagePath := range images {
		log.Printf("Processing %s", filepath.Base(imagePath))

		l, err := p.ProcessImage(ctx, imagePath)
		if err != nil {
			log.Printf("Failed to process %s: %v", filepath.Base(imagePath), err)
			summary.Failed++
			summary.Errors = append(summary.Errors, ItemError{
				File:  filepath.Base(imagePath),
				Error: err.Error(),
			})
			continue
		}

		// Each image counts exactly once: a publish failure moves it
		// to Failed even though the draft row remains in the store.
		if opts.Publish {
			publishErr := fmt.Errorf("publishing not configured")
			if p.publisher != nil {
				publishErr = p.publisher.Publish(ctx, l)
			}
			if publishErr != nil {
				log.Printf("Failed to publish %s: %v", l.SKU, publishErr)
				summary.Failed++
				summary.Errors = append(summary.Errors, ItemError{
					File:  filepath.Base(imagePath),
					Error: publishErr.Error(),
				})
				continue
			}
			summary.Published++
		}

		summary.Processed++
		summary.Listings = append(summary.Listings, l)
		log.Printf("Created listing %s: %s", l.SKU, l.Title)
	}

	summary.Duration = time.Since(start)

	if opts.JSONOutput != "" && len(summary.Listings) > 0 {
		if err := writeJSON(opts.JSONOutput, summary.Listings); err != nil {
			log.Printf("Failed to write JSON output: %v", err)
		} else {
			log.Printf("Saved %d listings to %s", len(summary.Listings), opts.JSONOutput)
		}
	}
	if opts.CSVOutput != "" && len(summary.Listings) > 0 {
		if err := writeCSVFile(opts.CSVOutput, summary.Listings); err != nil {
			log.Printf("Failed to write CSV output: %v", err)
		} else {
			log.Printf("Exported %d listings to %s", len(summary.Listings), opts.CSVOutput)
		}
	}

	now := time.Now()
	run.CompletedAt = &now
	run.ItemsProcessed = summary.Processed
	run.ItemsFailed = summary.Failed
	switch {
	case summary.Processed == 0 && summary.Failed > 0:
		run.Status = "failed"
	case summary.Failed > 0:
		run.Status = "partial"
	default:
		run.Status = "success"
	}
	if len(summary.Errors) > 0 {
		run.ErrorMessage = fmt.Sprintf("%d items failed", summary.Failed)
	}
	if err := p.db.UpdateRun(run); err != nil {
		return summary, fmt.Errorf("failed to update run record: %w", err)
	}

	log.Printf("Run %s complete: %d processed, %d failed in %s",
		run.RunID, summary.Processed, summary.Failed, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

func (p *Pipeline) saveListing(l *listing.Listing, imagePath string) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}

	return p.db.SaveListing(&database.ListingRecord{
		SKU:        l.SKU,
		Title:      l.Title,
		CategoryID: l.Category.ID,
		Condition:  l.Condition,
		Price:      l.BuyItNowPrice,
		Currency:   l.Price.Currency,
		Status:     database.StatusDraft,
		ImagePath:  imagePath,
		Payload:    string(payload),
	})
}

func writeJSON(path string, listings []*listing.Listing) error {
	data, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeCSVFile(path string, listings []*listing.Listing) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := listing.WriteCSV(f, listings); err != nil {
		return err
	}
	return f.Sync()
}
