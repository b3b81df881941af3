package ebay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAPIErrorConcatenation(t *testing.T) {
	body := []byte(`{"errors": [
		{"errorId": 25001, "message": "A system error has occurred"},
		{"message": "Category not allowed"}
	]}`)

	err := newAPIError(400, body)
	want := "A system error has occurred (25001); Category not allowed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAPIErrorRawFallback(t *testing.T) {
	err := newAPIError(500, []byte("<html>gateway timeout</html>"))
	if err.Error() != "HTTP 500: <html>gateway timeout</html>" {
		t.Errorf("Unexpected fallback message: %q", err.Error())
	}

	long := newAPIError(502, []byte(strings.Repeat("x", 500)))
	if len(long.Error()) > 220 {
		t.Errorf("Expected body truncated in message, got %d chars", len(long.Error()))
	}
}

// testClient builds a client pointed at a local server with a seeded
// valid token.
func testClient(serverURL string) *Client {
	future := time.Now().Add(time.Hour)
	store := &MemoryStore{}
	store.SetToken(&Token{AccessToken: "test-access", ExpiresAt: &future})

	c := NewClient(Config{
		ClientID:      "id",
		ClientSecret:  "secret",
		Sandbox:       true,
		MarketplaceID: "EBAY_US",
	}, store)
	c.baseURL = serverURL
	return c
}

func TestCreateInventoryItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/sell/inventory/v1/inventory_item/JANE-240830120000" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-access" {
			t.Errorf("Unexpected auth header %q", got)
		}
		if got := r.Header.Get("X-EBAY-C-MARKETPLACE-ID"); got != "EBAY_US" {
			t.Errorf("Unexpected marketplace header %q", got)
		}

		var item InventoryItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			t.Fatalf("Bad request body: %v", err)
		}
		if item.Condition != "LIKE_NEW" {
			t.Errorf("Expected condition in payload, got %q", item.Condition)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.CreateInventoryItem(context.Background(), "JANE-240830120000", &InventoryItem{
		Condition: "LIKE_NEW",
		Product:   &Product{Title: "Harbor at Dawn"},
	})
	if err != nil {
		t.Fatalf("CreateInventoryItem failed: %v", err)
	}
}

func TestCreateOfferReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sell/inventory/v1/offer" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"offerId": "offer-42"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	offerID, err := c.CreateOffer(context.Background(), &Offer{SKU: "sku-1", MarketplaceID: "EBAY_US"})
	if err != nil {
		t.Fatalf("CreateOffer failed: %v", err)
	}
	if offerID != "offer-42" {
		t.Errorf("Expected offer-42, got %q", offerID)
	}
}

func TestCreateOfferAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors": [{"errorId": 25002, "message": "SKU not found"}]}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.CreateOffer(context.Background(), &Offer{SKU: "missing"})
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "SKU not found (25002)") {
		t.Errorf("Expected parsed API error, got %q", err.Error())
	}
}

func TestPublishOffer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sell/inventory/v1/offer/offer-42/publish" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"listingId": "listing-7"})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	listingID, err := c.PublishOffer(context.Background(), "offer-42")
	if err != nil {
		t.Fatalf("PublishOffer failed: %v", err)
	}
	if listingID != "listing-7" {
		t.Errorf("Expected listing-7, got %q", listingID)
	}
}

func TestDoRequestWithoutToken(t *testing.T) {
	c := NewClient(Config{ClientID: "id", ClientSecret: "secret", Sandbox: true}, &MemoryStore{})
	if err := c.CreateInventoryItem(context.Background(), "sku", &InventoryItem{}); err == nil {
		t.Error("Expected error without a token")
	}
}
