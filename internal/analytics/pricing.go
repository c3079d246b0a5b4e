// Package analytics provides the pure computation core: pricing, descriptive
// statistics, rate derivation, ranking and time bucketing. Nothing in this
// package touches the database or the network.
package analytics

import (
	"github.com/shopspring/decimal"
)

type MarkupType string

const (
	MarkupPercentage MarkupType = "percentage"
	MarkupFixed      MarkupType = "fixed"
)

type DiscountType string

const (
	DiscountNone       DiscountType = "none"
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var oneHundred = decimal.NewFromInt(100)

// PricingRule is the markup/discount configuration attached to an event.
type PricingRule struct {
	MarkupType    MarkupType
	MarkupValue   decimal.Decimal
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
}

// Pricing is the full cascade breakdown for one event. Recomputed on every
// read, never cached across item or rule mutations.
type Pricing struct {
	BaseCost         decimal.Decimal `json:"base_cost"`
	MarkupAmount     decimal.Decimal `json:"markup_amount"`
	PriceAfterMarkup decimal.Decimal `json:"price_after_markup"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	FinalPrice       decimal.Decimal `json:"final_price"`
	GrossProfit      decimal.Decimal `json:"gross_profit"`
	ProfitMarginPct  float64         `json:"profit_margin_pct"`
}

// ComputePrice runs the pricing cascade in fixed order: markup on base cost,
// discount on the post-markup price, final price clamped at zero. It never
// fails; negative inputs are rejected at the API boundary, not here.
func ComputePrice(baseCost decimal.Decimal, rule PricingRule) Pricing {
	var markupAmount decimal.Decimal
	if rule.MarkupType == MarkupPercentage {
		markupAmount = baseCost.Mul(rule.MarkupValue).Div(oneHundred)
	} else {
		markupAmount = rule.MarkupValue
	}

	priceAfterMarkup := baseCost.Add(markupAmount)

	var discountAmount decimal.Decimal
	switch rule.DiscountType {
	case DiscountPercentage:
		discountAmount = priceAfterMarkup.Mul(rule.DiscountValue).Div(oneHundred)
	case DiscountFixed:
		discountAmount = rule.DiscountValue
	default:
		discountAmount = decimal.Zero
	}

	// A discount larger than the post-markup price never produces a
	// negative final price.
	finalPrice := priceAfterMarkup.Sub(discountAmount)
	if finalPrice.IsNegative() {
		finalPrice = decimal.Zero
	}

	grossProfit := finalPrice.Sub(baseCost)

	var marginPct float64
	if finalPrice.IsPositive() {
		marginPct, _ = grossProfit.Div(finalPrice).Mul(oneHundred).Float64()
	}

	return Pricing{
		BaseCost:         baseCost,
		MarkupAmount:     markupAmount,
		PriceAfterMarkup: priceAfterMarkup,
		DiscountAmount:   discountAmount,
		FinalPrice:       finalPrice,
		GrossProfit:      grossProfit,
		ProfitMarginPct:  marginPct,
	}
}

// BaseCost sums cost * quantity over an event's line items. Zero items is a
// valid event and yields zero.
func BaseCost(costs []decimal.Decimal, quantities []int) decimal.Decimal {
	total := decimal.Zero
	for i, cost := range costs {
		qty := 1
		if i < len(quantities) && quantities[i] > 0 {
			qty = quantities[i]
		}
		total = total.Add(cost.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}
