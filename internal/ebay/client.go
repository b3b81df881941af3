// Package ebay wraps the eBay Sell APIs used to publish art listings:
// OAuth token lifecycle, inventory items, offers, and business
// policies.
package ebay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const (
	// Sandbox URLs
	SandboxAuthURL    = "https://auth.sandbox.ebay.com/oauth2/authorize"
	SandboxTokenURL   = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"
	SandboxAPIBaseURL = "https://api.sandbox.ebay.com"

	// Production URLs
	ProductionAuthURL    = "https://auth.ebay.com/oauth2/authorize"
	ProductionTokenURL   = "https://api.ebay.com/identity/v1/oauth2/token"
	ProductionAPIBaseURL = "https://api.ebay.com"
)

// Config holds eBay API configuration
type Config struct {
	ClientID      string
	ClientSecret  string
	RedirectURI   string
	Sandbox       bool
	MarketplaceID string
	Scopes        []string
}

// Client is the eBay Sell API client
type Client struct {
	config      Config
	httpClient  *http.Client
	oauthConfig *oauth2.Config
	tokens      *TokenManager
	baseURL     string
}

// NewClient creates a new eBay API client. The token store holds the
// one token slot this process owns for the configured environment.
func NewClient(cfg Config, store Store) *Client {
	var authURL, tokenURL, baseURL, environment string
	if cfg.Sandbox {
		authURL = SandboxAuthURL
		tokenURL = SandboxTokenURL
		baseURL = SandboxAPIBaseURL
		environment = "sandbox"
	} else {
		authURL = ProductionAuthURL
		tokenURL = ProductionTokenURL
		baseURL = ProductionAPIBaseURL
		environment = "production"
	}

	if cfg.MarketplaceID == "" {
		cfg.MarketplaceID = "EBAY_US"
	}

	// Default scopes for inventory management
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{
			"https://api.ebay.com/oauth/api_scope",
			"https://api.ebay.com/oauth/api_scope/sell.inventory",
			"https://api.ebay.com/oauth/api_scope/sell.inventory.readonly",
			"https://api.ebay.com/oauth/api_scope/sell.account",
			"https://api.ebay.com/oauth/api_scope/sell.account.readonly",
		}
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
	}

	return &Client{
		config:      cfg,
		oauthConfig: oauthConfig,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		tokens:      NewTokenManager(cfg.ClientID, cfg.ClientSecret, tokenURL, environment, store),
		baseURL:     baseURL,
	}
}

// Tokens exposes the client's token manager.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// GetAuthURL returns the OAuth authorization URL
func (c *Client) GetAuthURL(state string) string {
	return c.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode exchanges an auth code for tokens and persists them.
func (c *Client) ExchangeCode(ctx context.Context, code string) error {
	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code: %w", err)
	}

	expiresIn := 0
	if !token.Expiry.IsZero() {
		expiresIn = int(time.Until(token.Expiry).Seconds())
	}
	return c.tokens.SetToken(token.AccessToken, token.RefreshToken, expiresIn)
}

// IsConfigured returns true if eBay API credentials are set
func (c *Client) IsConfigured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// doRequest makes an authenticated API request
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	if !c.tokens.EnsureValidToken(ctx) {
		return nil, fmt.Errorf("no valid eBay token")
	}

	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.tokens.AccessToken())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", c.config.MarketplaceID)

	return c.httpClient.Do(req)
}

// InventoryItem represents an eBay inventory item
type InventoryItem struct {
	SKU                  string        `json:"sku,omitempty"`
	Locale               string        `json:"locale,omitempty"`
	Product              *Product      `json:"product,omitempty"`
	Condition            string        `json:"condition,omitempty"`
	ConditionDescription string        `json:"conditionDescription,omitempty"`
	Availability         *Availability `json:"availability,omitempty"`
}

// Product holds product details
type Product struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Aspects     map[string][]string `json:"aspects,omitempty"`
	ImageURLs   []string            `json:"imageUrls,omitempty"`
	Brand       string              `json:"brand,omitempty"`
}

// Availability holds inventory availability
type Availability struct {
	ShipToLocationAvailability *ShipToLocation `json:"shipToLocationAvailability,omitempty"`
}

// ShipToLocation holds quantity info
type ShipToLocation struct {
	Quantity int `json:"quantity,omitempty"`
}

// Offer represents an eBay listing offer
type Offer struct {
	OfferID            string           `json:"offerId,omitempty"`
	SKU                string           `json:"sku,omitempty"`
	MarketplaceID      string           `json:"marketplaceId,omitempty"`
	Format             string           `json:"format,omitempty"`
	AvailableQuantity  int              `json:"availableQuantity,omitempty"`
	CategoryID         string           `json:"categoryId,omitempty"`
	ListingDescription string           `json:"listingDescription,omitempty"`
	PricingSummary     *PricingSummary  `json:"pricingSummary,omitempty"`
	ListingPolicies    *ListingPolicies `json:"listingPolicies,omitempty"`
	Status             string           `json:"status,omitempty"`
	Listing            *ListingDetails  `json:"listing,omitempty"`
}

// PricingSummary holds pricing info
type PricingSummary struct {
	Price *Amount `json:"price,omitempty"`
}

// Amount holds monetary values
type Amount struct {
	Value    string `json:"value,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// ListingPolicies holds policy references
type ListingPolicies struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId,omitempty"`
	PaymentPolicyID     string `json:"paymentPolicyId,omitempty"`
	ReturnPolicyID      string `json:"returnPolicyId,omitempty"`
}

// ListingDetails holds listing info
type ListingDetails struct {
	ListingID string `json:"listingId,omitempty"`
}

// FulfillmentPolicy represents a shipping/fulfillment policy
type FulfillmentPolicy struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId,omitempty"`
	Name                string `json:"name,omitempty"`
	MarketplaceID       string `json:"marketplaceId,omitempty"`
}

// FulfillmentPoliciesResponse is the response from getFulfillmentPolicies
type FulfillmentPoliciesResponse struct {
	FulfillmentPolicies []FulfillmentPolicy `json:"fulfillmentPolicies,omitempty"`
	Total               int                 `json:"total,omitempty"`
}

// PaymentPolicy represents a payment policy
type PaymentPolicy struct {
	PaymentPolicyID string `json:"paymentPolicyId,omitempty"`
	Name            string `json:"name,omitempty"`
	MarketplaceID   string `json:"marketplaceId,omitempty"`
	ImmediatePay    bool   `json:"immediatePay,omitempty"`
}

// PaymentPoliciesResponse is the response from getPaymentPolicies
type PaymentPoliciesResponse struct {
	PaymentPolicies []PaymentPolicy `json:"paymentPolicies,omitempty"`
	Total           int             `json:"total,omitempty"`
}

// ReturnPolicy represents a return policy
type ReturnPolicy struct {
	ReturnPolicyID  string `json:"returnPolicyId,omitempty"`
	Name            string `json:"name,omitempty"`
	MarketplaceID   string `json:"marketplaceId,omitempty"`
	ReturnsAccepted bool   `json:"returnsAccepted,omitempty"`
}

// ReturnPoliciesResponse is the response from getReturnPolicies
type ReturnPoliciesResponse struct {
	ReturnPolicies []ReturnPolicy `json:"returnPolicies,omitempty"`
	Total          int            `json:"total,omitempty"`
}

// CreateInventoryItem creates or replaces the inventory item for a SKU.
func (c *Client) CreateInventoryItem(ctx context.Context, sku string, item *InventoryItem) error {
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory item: %w", err)
	}

	path := "/sell/inventory/v1/inventory_item/" + url.PathEscape(sku)
	resp, err := c.doRequest(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}
	respBody, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("failed to create inventory item %s: %w", sku, newAPIError(resp.StatusCode, respBody))
}

// CreateOffer creates an unpublished offer and returns its offer ID.
func (c *Client) CreateOffer(ctx context.Context, offer *Offer) (string, error) {
	body, err := json.Marshal(offer)
	if err != nil {
		return "", fmt.Errorf("failed to marshal offer: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/sell/inventory/v1/offer", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read offer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("failed to create offer for %s: %w", offer.SKU, newAPIError(resp.StatusCode, respBody))
	}

	var result struct {
		OfferID string `json:"offerId"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode offer response: %w", err)
	}
	return result.OfferID, nil
}

// PublishOffer publishes an offer, turning it into a live listing, and
// returns the listing ID.
func (c *Client) PublishOffer(ctx context.Context, offerID string) (string, error) {
	path := "/sell/inventory/v1/offer/" + url.PathEscape(offerID) + "/publish"
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read publish response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to publish offer %s: %w", offerID, newAPIError(resp.StatusCode, respBody))
	}

	var result struct {
		ListingID string `json:"listingId"`
	}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return "", fmt.Errorf("failed to decode publish response: %w", err)
		}
	}
	return result.ListingID, nil
}

// GetOffer retrieves one offer by ID.
func (c *Client) GetOffer(ctx context.Context, offerID string) (*Offer, error) {
	path := "/sell/inventory/v1/offer/" + url.PathEscape(offerID)
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get offer %s: %w", offerID, newAPIError(resp.StatusCode, body))
	}

	var offer Offer
	if err := json.NewDecoder(resp.Body).Decode(&offer); err != nil {
		return nil, fmt.Errorf("failed to decode offer: %w", err)
	}
	return &offer, nil
}

// GetFulfillmentPolicies retrieves all fulfillment policies
func (c *Client) GetFulfillmentPolicies(ctx context.Context) (*FulfillmentPoliciesResponse, error) {
	path := "/sell/account/v1/fulfillment_policy?marketplace_id=" + url.QueryEscape(c.config.MarketplaceID)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get fulfillment policies: %w", newAPIError(resp.StatusCode, body))
	}

	var result FulfillmentPoliciesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// GetPaymentPolicies retrieves all payment policies
func (c *Client) GetPaymentPolicies(ctx context.Context) (*PaymentPoliciesResponse, error) {
	path := "/sell/account/v1/payment_policy?marketplace_id=" + url.QueryEscape(c.config.MarketplaceID)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get payment policies: %w", newAPIError(resp.StatusCode, body))
	}

	var result PaymentPoliciesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// GetReturnPolicies retrieves all return policies
func (c *Client) GetReturnPolicies(ctx context.Context) (*ReturnPoliciesResponse, error) {
	path := "/sell/account/v1/return_policy?marketplace_id=" + url.QueryEscape(c.config.MarketplaceID)

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get return policies: %w", newAPIError(resp.StatusCode, body))
	}

	var result ReturnPoliciesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
