package automation

import (
	"context"
	"fmt"
	"log"

	"github.com/gauntletgallery/artlister/internal/database"
	"github.com/gauntletgallery/artlister/internal/ebay"
	"github.com/gauntletgallery/artlister/internal/listing"
)

// Publisher pushes a generated listing through the Sell API sequence:
// inventory item PUT, offer POST, publish POST. Each step is tried
// once; a failure marks the listing failed and stops.
type Publisher struct {
	client *ebay.Client
	db     *database.DB
}

// NewPublisher creates a publisher over an eBay client.
func NewPublisher(client *ebay.Client, db *database.DB) *Publisher {
	return &Publisher{client: client, db: db}
}

// Publish creates the inventory item and offer for a listing and
// publishes it. On success the stored listing carries the offer and
// eBay listing IDs.
func (p *Publisher) Publish(ctx context.Context, l *listing.Listing) error {
	if !p.client.Tokens().EnsureValidToken(ctx) {
		return fmt.Errorf("no valid eBay token")
	}

	item := toInventoryItem(l)
	if err := p.client.CreateInventoryItem(ctx, l.SKU, item); err != nil {
		p.markFailed(l.SKU)
		return err
	}

	offerID, err := p.client.CreateOffer(ctx, toOffer(l))
	if err != nil {
		p.markFailed(l.SKU)
		return err
	}

	ebayListingID, err := p.client.PublishOffer(ctx, offerID)
	if err != nil {
		p.markFailed(l.SKU)
		return err
	}

	if err := p.db.MarkListingPublished(l.SKU, offerID, ebayListingID); err != nil {
		return fmt.Errorf("published but failed to record: %w", err)
	}

	log.Printf("Published %s as eBay listing %s", l.SKU, ebayListingID)
	return nil
}

func (p *Publisher) markFailed(sku string) {
	if err := p.db.MarkListingFailed(sku); err != nil {
		log.Printf("Failed to mark listing %s failed: %v", sku, err)
	}
}

// toInventoryItem maps a listing onto the Sell Inventory item payload.
func toInventoryItem(l *listing.Listing) *ebay.InventoryItem {
	aspects := make(map[string][]string, len(l.ItemSpecifics))
	for key, value := range l.ItemSpecifics {
		if value != "" {
			aspects[key] = []string{value}
		}
	}

	return &ebay.InventoryItem{
		Condition:            l.Condition,
		ConditionDescription: l.ConditionDescription,
		Product: &ebay.Product{
			Title:       l.Title,
			Description: l.Description,
			Aspects:     aspects,
			ImageURLs:   l.Images,
		},
		Availability: &ebay.Availability{
			ShipToLocationAvailability: &ebay.ShipToLocation{
				Quantity: l.Quantity,
			},
		},
	}
}

// toOffer maps a listing onto the offer payload.
func toOffer(l *listing.Listing) *ebay.Offer {
	offer := &ebay.Offer{
		SKU:                l.SKU,
		MarketplaceID:      "EBAY_US",
		Format:             l.Format,
		AvailableQuantity:  l.Quantity,
		CategoryID:         fmt.Sprintf("%d", l.Category.ID),
		ListingDescription: l.Description,
		PricingSummary: &ebay.PricingSummary{
			Price: &ebay.Amount{
				Value:    l.Price.Value,
				Currency: l.Price.Currency,
			},
		},
	}

	if l.Policies.Fulfillment != "" || l.Policies.Payment != "" || l.Policies.Return != "" {
		offer.ListingPolicies = &ebay.ListingPolicies{
			FulfillmentPolicyID: l.Policies.Fulfillment,
			PaymentPolicyID:     l.Policies.Payment,
			ReturnPolicyID:      l.Policies.Return,
		}
	}
	return offer
}
