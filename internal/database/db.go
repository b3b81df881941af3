// Package database is the sqlite persistence layer: generated
// listings, batch run history, settings, and web sessions.
package database

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps the SQLite database
type DB struct {
	*sql.DB
}

// Listing status values.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// ListingRecord is one stored listing row. Payload carries the full
// listing JSON; the remaining columns are the queryable projection.
type ListingRecord struct {
	SKU           string    `json:"sku"`
	Title         string    `json:"title"`
	CategoryID    int       `json:"categoryId"`
	Condition     string    `json:"condition"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	OfferID       string    `json:"offerId,omitempty"`
	EbayListingID string    `json:"ebayListingId,omitempty"`
	ImagePath     string    `json:"imagePath,omitempty"`
	Payload       string    `json:"payload"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// RunRecord is one batch or publish run.
type RunRecord struct {
	ID             int64      `json:"id"`
	RunID          string     `json:"runId"`
	RunType        string     `json:"runType"` // "batch" or "publish"
	Status         string     `json:"status"`  // "success", "partial", "failed"
	ItemsProcessed int        `json:"itemsProcessed"`
	ItemsFailed    int        `json:"itemsFailed"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// Setting represents an application setting (key-value pair)
type Setting struct {
	ID          int64     `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Open opens or creates the database
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{db}, nil
}

// SaveListing inserts or replaces a listing row by SKU.
func (db *DB) SaveListing(rec *ListingRecord) error {
	if rec.Status == "" {
		rec.Status = StatusDraft
	}
	if rec.Currency == "" {
		rec.Currency = "USD"
	}

	_, err := db.Exec(`
		INSERT INTO listings (sku, title, category_id, condition, price, currency, status, offer_id, ebay_listing_id, image_path, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(sku) DO UPDATE SET
			title = excluded.title,
			category_id = excluded.category_id,
			condition = excluded.condition,
			price = excluded.price,
			currency = excluded.currency,
			status = excluded.status,
			offer_id = excluded.offer_id,
			ebay_listing_id = excluded.ebay_listing_id,
			image_path = excluded.image_path,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`, rec.SKU, rec.Title, rec.CategoryID, rec.Condition, rec.Price, rec.Currency,
		rec.Status, rec.OfferID, rec.EbayListingID, rec.ImagePath, rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to save listing %s: %w", rec.SKU, err)
	}
	return nil
}

// GetListing retrieves one listing by SKU, nil if absent.
func (db *DB) GetListing(sku string) (*ListingRecord, error) {
	var rec ListingRecord
	err := db.QueryRow(`
		SELECT sku, title, category_id, COALESCE(condition, ''), price, currency, status,
		       COALESCE(offer_id, ''), COALESCE(ebay_listing_id, ''), COALESCE(image_path, ''),
		       payload, created_at, updated_at
		FROM listings
		WHERE sku = ?
	`, sku).Scan(&rec.SKU, &rec.Title, &rec.CategoryID, &rec.Condition, &rec.Price,
		&rec.Currency, &rec.Status, &rec.OfferID, &rec.EbayListingID, &rec.ImagePath,
		&rec.Payload, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetListings returns listings newest first, optionally filtered by
// status. A non-positive limit defaults to 100.
func (db *DB) GetListings(status string, limit int) ([]ListingRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT sku, title, category_id, COALESCE(condition, ''), price, currency, status,
		       COALESCE(offer_id, ''), COALESCE(ebay_listing_id, ''), COALESCE(image_path, ''),
		       payload, created_at, updated_at
		FROM listings
	`
	var args []interface{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []ListingRecord
	for rows.Next() {
		var rec ListingRecord
		err := rows.Scan(&rec.SKU, &rec.Title, &rec.CategoryID, &rec.Condition, &rec.Price,
			&rec.Currency, &rec.Status, &rec.OfferID, &rec.EbayListingID, &rec.ImagePath,
			&rec.Payload, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, err
		}
		listings = append(listings, rec)
	}
	return listings, rows.Err()
}

// MarkListingPublished records the offer and listing IDs after a
// successful publish.
func (db *DB) MarkListingPublished(sku, offerID, ebayListingID string) error {
	_, err := db.Exec(`
		UPDATE listings
		SET status = ?, offer_id = ?, ebay_listing_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE sku = ?
	`, StatusPublished, offerID, ebayListingID, sku)
	return err
}

// MarkListingFailed records a failed publish attempt.
func (db *DB) MarkListingFailed(sku string) error {
	_, err := db.Exec(`
		UPDATE listings
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE sku = ?
	`, StatusFailed, sku)
	return err
}

// CreateRun creates a new run history record
func (db *DB) CreateRun(run *RunRecord) error {
	result, err := db.Exec(`
		INSERT INTO run_history (run_id, run_type, status, items_processed, items_failed, error_message, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.RunType, run.Status, run.ItemsProcessed, run.ItemsFailed, run.ErrorMessage, run.StartedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	run.ID = id
	return nil
}

// UpdateRun updates a run history record
func (db *DB) UpdateRun(run *RunRecord) error {
	_, err := db.Exec(`
		UPDATE run_history
		SET status = ?, items_processed = ?, items_failed = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`, run.Status, run.ItemsProcessed, run.ItemsFailed, run.ErrorMessage, run.CompletedAt, run.ID)
	return err
}

// GetRunHistory returns recent runs, newest first.
func (db *DB) GetRunHistory(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Query(`
		SELECT id, run_id, run_type, status, items_processed, items_failed,
		       COALESCE(error_message, ''), started_at, completed_at
		FROM run_history
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		err := rows.Scan(&run.ID, &run.RunID, &run.RunType, &run.Status,
			&run.ItemsProcessed, &run.ItemsFailed, &run.ErrorMessage,
			&run.StartedAt, &run.CompletedAt)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetSetting returns a single setting by key, nil if absent.
func (db *DB) GetSetting(key string) (*Setting, error) {
	var s Setting
	err := db.QueryRow(`
		SELECT id, key, value, COALESCE(description, ''), created_at, updated_at
		FROM settings
		WHERE key = ?
	`, key).Scan(&s.ID, &s.Key, &s.Value, &s.Description, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetSetting inserts or updates a setting.
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetAllSettings returns all application settings
func (db *DB) GetAllSettings() ([]Setting, error) {
	rows, err := db.Query(`
		SELECT id, key, value, COALESCE(description, ''), created_at, updated_at
		FROM settings
		ORDER BY key
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.Description, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
