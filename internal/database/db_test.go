package database

import (
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndGetListing(t *testing.T) {
	db := openTestDB(t)

	rec := &ListingRecord{
		SKU:        "JANE-240830120000",
		Title:      "Jane Moreau - Harbor at Dawn",
		CategoryID: 20125,
		Condition:  "LIKE_NEW",
		Price:      247.50,
		Payload:    `{"sku": "JANE-240830120000"}`,
	}
	if err := db.SaveListing(rec); err != nil {
		t.Fatalf("SaveListing failed: %v", err)
	}

	got, err := db.GetListing(rec.SKU)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected listing, got nil")
	}
	if got.Status != StatusDraft {
		t.Errorf("Expected draft status default, got %q", got.Status)
	}
	if got.Currency != "USD" {
		t.Errorf("Expected USD currency default, got %q", got.Currency)
	}
	if got.Price != 247.50 || got.CategoryID != 20125 {
		t.Errorf("Stored values do not match: %+v", got)
	}

	// Upsert replaces the row.
	rec.Title = "Updated Title"
	rec.Price = 300
	if err := db.SaveListing(rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	got, _ = db.GetListing(rec.SKU)
	if got.Title != "Updated Title" || got.Price != 300 {
		t.Errorf("Upsert did not replace values: %+v", got)
	}

	missing, err := db.GetListing("nope")
	if err != nil {
		t.Fatalf("GetListing for missing SKU failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for missing SKU")
	}
}

func TestMarkListingPublished(t *testing.T) {
	db := openTestDB(t)

	rec := &ListingRecord{SKU: "ART-1", Title: "t", CategoryID: 20128, Payload: "{}"}
	if err := db.SaveListing(rec); err != nil {
		t.Fatalf("SaveListing failed: %v", err)
	}

	if err := db.MarkListingPublished("ART-1", "offer-42", "listing-7"); err != nil {
		t.Fatalf("MarkListingPublished failed: %v", err)
	}

	got, _ := db.GetListing("ART-1")
	if got.Status != StatusPublished || got.OfferID != "offer-42" || got.EbayListingID != "listing-7" {
		t.Errorf("Publish state not stored: %+v", got)
	}

	published, err := db.GetListings(StatusPublished, 10)
	if err != nil {
		t.Fatalf("GetListings failed: %v", err)
	}
	if len(published) != 1 {
		t.Errorf("Expected 1 published listing, got %d", len(published))
	}
	drafts, _ := db.GetListings(StatusDraft, 10)
	if len(drafts) != 0 {
		t.Errorf("Expected no drafts, got %d", len(drafts))
	}
}

func TestRunHistory(t *testing.T) {
	db := openTestDB(t)

	run := &RunRecord{
		RunID:     "run-abc",
		RunType:   "batch",
		Status:    "running",
		StartedAt: time.Now(),
	}
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("Expected run ID assigned")
	}

	completed := time.Now()
	run.Status = "partial"
	run.ItemsProcessed = 5
	run.ItemsFailed = 2
	run.ErrorMessage = "2 items failed"
	run.CompletedAt = &completed
	if err := db.UpdateRun(run); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	runs, err := db.GetRunHistory(10)
	if err != nil {
		t.Fatalf("GetRunHistory failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].Status != "partial" || runs[0].ItemsProcessed != 5 || runs[0].ItemsFailed != 2 {
		t.Errorf("Run not updated: %+v", runs[0])
	}
	if runs[0].CompletedAt == nil {
		t.Error("Expected completed timestamp")
	}
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)

	missing, err := db.GetSetting("nope")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if missing != nil {
		t.Error("Expected nil for unknown setting")
	}

	if err := db.SetSetting("batch_folder", "/art/incoming"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := db.SetSetting("batch_folder", "/art/queue"); err != nil {
		t.Fatalf("SetSetting upsert failed: %v", err)
	}

	got, _ := db.GetSetting("batch_folder")
	if got == nil || got.Value != "/art/queue" {
		t.Errorf("Expected upserted value, got %+v", got)
	}

	all, err := db.GetAllSettings()
	if err != nil {
		t.Fatalf("GetAllSettings failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 setting, got %d", len(all))
	}
}

func TestSecretCipherRoundTrip(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	c, err := NewSecretCipher(key)
	if err != nil {
		t.Fatalf("NewSecretCipher failed: %v", err)
	}

	encrypted, err := c.Encrypt(`{"access_token": "secret"}`)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	plain, err := c.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if plain != `{"access_token": "secret"}` {
		t.Errorf("Round trip mismatch: %q", plain)
	}

	// Tampering must fail authentication.
	encrypted[len(encrypted)-1] ^= 0xff
	if _, err := c.Decrypt(encrypted); err == nil {
		t.Error("Expected tampered ciphertext to fail")
	}
}

func TestSecretCipherKeyValidation(t *testing.T) {
	if _, err := NewSecretCipher(""); err == nil {
		t.Error("Expected error for empty key")
	}
	if _, err := NewSecretCipher("not-base64!"); err == nil {
		t.Error("Expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString(make([]byte, 16))
	if _, err := NewSecretCipher(short); err == nil {
		t.Error("Expected error for 16-byte key")
	}
}
