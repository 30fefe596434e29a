package calculator

import "github.com/shopspring/decimal"

// Market-cap tier thresholds in the exchange's currency.
var (
	largeCapFloor = decimal.New(100, 9)
	midCapFloor   = decimal.New(15, 9)
	smallCapFloor = decimal.New(1, 9)
)

// MarketCapCategory classifies a market capitalization into a size tier.
func MarketCapCategory(marketCap decimal.NullDecimal) string {
	if !marketCap.Valid {
		return "N/A"
	}
	switch c := marketCap.Decimal; {
	case c.GreaterThanOrEqual(largeCapFloor):
		return "Large-cap"
	case c.GreaterThanOrEqual(midCapFloor):
		return "Mid-cap"
	case c.GreaterThanOrEqual(smallCapFloor):
		return "Small-cap"
	default:
		return "Micro-cap"
	}
}
