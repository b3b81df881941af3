package listing

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// descriptionCSVLimit is eBay's maximum description length for bulk
// upload rows.
const descriptionCSVLimit = 4000

var csvHeader = []string{
	"Title", "Subtitle", "Category ID", "Condition", "Start Price",
	"Buy It Now Price", "Description", "PicURL", "Quantity",
	"Duration", "Location", "Payment Methods", "Shipping Service",
}

// WriteCSV exports listings as an eBay bulk-upload CSV. Descriptions
// longer than 4000 characters are truncated; payment methods are
// pipe-joined.
func WriteCSV(w io.Writer, listings []*Listing) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, l := range listings {
		desc := l.Description
		if utf8.RuneCountInString(desc) > descriptionCSVLimit {
			desc = string([]rune(desc)[:descriptionCSVLimit])
		}

		picURL := ""
		if len(l.Images) > 0 {
			picURL = l.Images[0]
		}

		row := []string{
			l.Title,
			l.Subtitle,
			fmt.Sprintf("%d", l.Category.ID),
			l.Condition,
			fmt.Sprintf("%.2f", l.StartingBid),
			fmt.Sprintf("%.2f", l.BuyItNowPrice),
			desc,
			picURL,
			fmt.Sprintf("%d", l.Quantity),
			"7",
			l.Location,
			strings.Join(l.PaymentMethods, "|"),
			"USPS Priority Mail",
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", l.SKU, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
