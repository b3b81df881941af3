package pricing

// Approximate eBay fee structure for the art category.
const (
	insertionFee      = 0.30
	finalValueFeeRate = 0.125
	paymentFeeRate    = 0.029
	paymentFeeFlat    = 0.30
)

// FeeBreakdown shows the estimated marketplace fees for a sale price.
type FeeBreakdown struct {
	InsertionFee      float64 `json:"insertionFee"`
	FinalValueFee     float64 `json:"finalValueFee"`
	PaymentProcessing float64 `json:"paymentProcessing"`
	TotalFees         float64 `json:"totalFees"`
	NetAmount         float64 `json:"netAmount"`
}

// ProfitEstimate projects profit for a cost/sale-price pair.
type ProfitEstimate struct {
	Cost         float64 `json:"cost"`
	SalePrice    float64 `json:"salePrice"`
	GrossProfit  float64 `json:"grossProfit"`
	NetProfit    float64 `json:"netProfit"`
	ProfitMargin float64 `json:"profitMargin"`
	TotalFees    float64 `json:"totalFees"`
}

// Fees estimates eBay fees for a listing at the given price.
func Fees(price float64) FeeBreakdown {
	finalValueFee := price * finalValueFeeRate
	paymentFee := price*paymentFeeRate + paymentFeeFlat
	total := insertionFee + finalValueFee + paymentFee

	return FeeBreakdown{
		InsertionFee:      insertionFee,
		FinalValueFee:     round2(finalValueFee),
		PaymentProcessing: round2(paymentFee),
		TotalFees:         round2(total),
		NetAmount:         round2(price - total),
	}
}

// Profit estimates net profit after fees.
func Profit(cost, salePrice float64) ProfitEstimate {
	fees := Fees(salePrice)

	netProfit := fees.NetAmount - cost
	margin := 0.0
	if salePrice > 0 {
		margin = netProfit / salePrice * 100
	}

	return ProfitEstimate{
		Cost:         cost,
		SalePrice:    salePrice,
		GrossProfit:  round2(salePrice - cost),
		NetProfit:    round2(netProfit),
		ProfitMargin: round2(margin),
		TotalFees:    fees.TotalFees,
	}
}
