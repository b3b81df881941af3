package handlers

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/gauntletgallery/artlister/internal/analysis"
	"github.com/gauntletgallery/artlister/internal/automation"
	"github.com/gauntletgallery/artlister/internal/database"
	"github.com/gauntletgallery/artlister/internal/ebay"
	"github.com/gauntletgallery/artlister/internal/listing"
	"github.com/gauntletgallery/artlister/internal/pricing"
)

const (
	sessionName   = "artlister"
	oauthStateKey = "oauth_state"
	maxUploadSize = 20 << 20 // 20 MB
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db         *database.DB
	ebayClient *ebay.Client
	sessions   *database.SessionStore
	analyzer   *analysis.Service
	engine     *pricing.Engine
	builder    *listing.Builder
	pipeline   *automation.Pipeline
	publisher  *automation.Publisher
	uploadDir  string
}

// NewHandler creates a new handler
func NewHandler(db *database.DB, client *ebay.Client, sessions *database.SessionStore,
	analyzer *analysis.Service, engine *pricing.Engine, builder *listing.Builder,
	pipeline *automation.Pipeline, publisher *automation.Publisher, uploadDir string) *Handler {
	return &Handler{
		db:         db,
		ebayClient: client,
		sessions:   sessions,
		analyzer:   analyzer,
		engine:     engine,
		builder:    builder,
		pipeline:   pipeline,
		publisher:  publisher,
		uploadDir:  uploadDir,
	}
}

// JSON response helper
func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON: %v", err)
	}
}

// Error response helper
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// HealthCheck returns API health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	authenticated, _ := h.ebayClient.Tokens().Status()
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"authenticated": authenticated,
		"configured":    h.ebayClient.IsConfigured(),
	})
}

// GetAuthURL returns the OAuth authorization URL
func (h *Handler) GetAuthURL(w http.ResponseWriter, r *http.Request) {
	state := hex.EncodeToString(securecookie.GenerateRandomKey(16))

	session, _ := h.sessions.Get(r, sessionName)
	session.Values[oauthStateKey] = state
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save session: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	url := h.ebayClient.GetAuthURL(state)
	jsonResponse(w, http.StatusOK, map[string]string{"url": url})
}

// OAuthCallback handles the OAuth callback
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errParam := r.URL.Query().Get("error")
	errDesc := r.URL.Query().Get("error_description")

	log.Printf("OAuth callback received - code: %v, state: %s, error: %s", code != "", state, errParam)

	if errParam != "" {
		log.Printf("OAuth error from eBay: %s - %s", errParam, errDesc)
		http.Error(w, "eBay OAuth error: "+errDesc, http.StatusBadRequest)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	expectedState, _ := session.Values[oauthStateKey].(string)
	delete(session.Values, oauthStateKey)
	_ = session.Save(r, w)

	if expectedState == "" || state != expectedState {
		log.Printf("State mismatch - received: %s, expected: %s", state, expectedState)
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	if code == "" {
		log.Printf("Missing authorization code")
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	log.Printf("Exchanging code for token...")
	if err := h.ebayClient.ExchangeCode(r.Context(), code); err != nil {
		log.Printf("OAuth exchange error: %v", err)
		http.Error(w, "Failed to authenticate: "+err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("OAuth success! Token obtained.")
	// Redirect to the main app
	http.Redirect(w, r, "/?auth=success", http.StatusFound)
}

// GetAuthStatus returns current auth status
func (h *Handler) GetAuthStatus(w http.ResponseWriter, r *http.Request) {
	authenticated, expiresAt := h.ebayClient.Tokens().Status()
	resp := map[string]interface{}{
		"authenticated": authenticated,
		"configured":    h.ebayClient.IsConfigured(),
	}
	if expiresAt != nil {
		resp["expiresAt"] = expiresAt.Format(time.RFC3339)
	}
	jsonResponse(w, http.StatusOK, resp)
}

// AnalyzeImage accepts an image upload and returns the AI analysis.
func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	imagePath, err := h.saveUpload(r)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(imagePath)

	result, err := h.analyzer.Analyze(r.Context(), imagePath)
	if err != nil {
		log.Printf("AnalyzeImage error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	est, breakdown := h.engine.EstimateWithBreakdown(result.Analysis.PricingAttributes())
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"analysis":        result.Analysis,
		"confidenceScore": result.ConfidenceScore,
		"modelsUsed":      result.ModelsUsed,
		"estimate":        est,
		"breakdown":       breakdown,
	})
}

// EstimatePrice computes a price estimate from posted attributes.
func (h *Handler) EstimatePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var attrs pricing.Attributes
	if err := json.NewDecoder(r.Body).Decode(&attrs); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	est, breakdown := h.engine.EstimateWithBreakdown(attrs)
	fees := pricing.Fees(est.BuyItNow)
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"estimate":  est,
		"breakdown": breakdown,
		"fees":      fees,
	})
}

// PreviewListing builds a listing from posted analysis fields without
// persisting it.
func (h *Handler) PreviewListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var a analysis.Analysis
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := &analysis.Result{Analysis: a}
	est := h.engine.Estimate(a.PricingAttributes())
	l := h.builder.Build(result, est, nil, 0)

	jsonResponse(w, http.StatusOK, l)
}

// CreateListing runs one uploaded image through the full pipeline and
// stores the resulting draft.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	imagePath, err := h.saveUpload(r)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	l, err := h.pipeline.ProcessImage(r.Context(), imagePath)
	if err != nil {
		log.Printf("CreateListing error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusCreated, l)
}

// PublishRequest is the request body for the publish endpoint
type PublishRequest struct {
	SKU string `json:"sku"`
}

// PublishListing publishes a stored draft listing to eBay.
func (h *Handler) PublishListing(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	if !h.ebayClient.Tokens().EnsureValidToken(r.Context()) {
		errorResponse(w, http.StatusUnauthorized, "Not authenticated with eBay")
		return
	}

	var req PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SKU == "" {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec, err := h.db.GetListing(req.SKU)
	if err != nil {
		log.Printf("PublishListing lookup error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		errorResponse(w, http.StatusNotFound, "Listing not found: "+req.SKU)
		return
	}

	var l listing.Listing
	if err := json.Unmarshal([]byte(rec.Payload), &l); err != nil {
		log.Printf("PublishListing payload error: %v", err)
		errorResponse(w, http.StatusInternalServerError, "Stored listing payload is invalid")
		return
	}

	if err := h.publisher.Publish(r.Context(), &l); err != nil {
		log.Printf("PublishListing error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated, err := h.db.GetListing(req.SKU)
	if err != nil || updated == nil {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "published", "sku": req.SKU})
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// GetListings returns stored listings, optionally filtered by status
func (h *Handler) GetListings(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	listings, err := h.db.GetListings(status, limit)
	if err != nil {
		log.Printf("GetListings error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"listings": listings,
		"total":    len(listings),
	})
}

// GetRunHistory returns batch run history
func (h *Handler) GetRunHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	history, err := h.db.GetRunHistory(limit)
	if err != nil {
		log.Printf("GetRunHistory error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"history": history,
		"total":   len(history),
	})
}

// BatchRequest is the request body for a batch run
type BatchRequest struct {
	Folder  string `json:"folder"`
	Publish bool   `json:"publish"`
}

// RunBatch processes a folder of images through the pipeline.
func (h *Handler) RunBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Folder == "" {
		req.Folder = h.uploadDir
	}

	summary, err := h.pipeline.ProcessFolder(r.Context(), req.Folder, automation.RunOptions{Publish: req.Publish})
	if err != nil {
		log.Printf("RunBatch error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, summary)
}

// ExportCSV streams stored listings as a bulk-upload CSV file.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	records, err := h.db.GetListings(status, 500)
	if err != nil {
		log.Printf("ExportCSV error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	listings := make([]*listing.Listing, 0, len(records))
	for _, rec := range records {
		var l listing.Listing
		if err := json.Unmarshal([]byte(rec.Payload), &l); err != nil {
			log.Printf("Skipping %s: invalid payload: %v", rec.SKU, err)
			continue
		}
		listings = append(listings, &l)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="listings.csv"`)
	if err := listing.WriteCSV(w, listings); err != nil {
		log.Printf("ExportCSV write error: %v", err)
	}
}

// GetFulfillmentPolicies returns shipping policies
func (h *Handler) GetFulfillmentPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.ebayClient.GetFulfillmentPolicies(r.Context())
	if err != nil {
		log.Printf("GetFulfillmentPolicies error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, policies)
}

// GetPaymentPolicies returns payment policies
func (h *Handler) GetPaymentPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.ebayClient.GetPaymentPolicies(r.Context())
	if err != nil {
		log.Printf("GetPaymentPolicies error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, policies)
}

// GetReturnPolicies returns return policies
func (h *Handler) GetReturnPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.ebayClient.GetReturnPolicies(r.Context())
	if err != nil {
		log.Printf("GetReturnPolicies error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, policies)
}

// GetSettings returns all stored settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.GetAllSettings()
	if err != nil {
		log.Printf("GetSettings error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"settings": settings,
		"total":    len(settings),
	})
}

// UpdateSettingRequest is the request body for updating a setting
type UpdateSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UpdateSetting stores a setting value
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		errorResponse(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.db.SetSetting(req.Key, req.Value); err != nil {
		log.Printf("UpdateSetting error: %v", err)
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// saveUpload writes the "image" form file to the upload directory
// under a random name and returns its path.
func (h *Handler) saveUpload(r *http.Request) (string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return "", fmt.Errorf("invalid upload: %w", err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return "", fmt.Errorf("missing image file: %w", err)
	}
	defer file.Close()

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	path := filepath.Join(h.uploadDir, uuid.NewString()+ext)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return path, nil
}
