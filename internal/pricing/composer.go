package pricing

import (
	"sort"

	"github.com/angelmondragon/mia-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComposeQuote applies a marketplace's freight, coupon and cashback rules to
// resolved lines. Any unpriced line leaves base and final totals absent.
// Discount and cashback are rounded to centavos before they enter the final
// total, so final == base + freight - discount - cashback holds on the
// reported values whenever it is positive.
func ComposeQuote(rule MarketplaceRule, lines []ResolvedLine) MarketplaceQuote {
	quote := MarketplaceQuote{
		MarketplaceID:   rule.ID,
		Marketplace:     rule.Name,
		MarketplaceSlug: rule.Slug,
		Freight:         rule.DefaultFreight,
		Discount:        decimal.Zero,
		Cashback:        decimal.Zero,
		Breakdown:       make([]BreakdownLine, 0, len(lines)),
	}

	base := decimal.Zero
	complete := true
	for _, line := range lines {
		entry := BreakdownLine{
			Item:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Source:     line.Source,
			SourceName: line.SourceName,
			Link:       line.Link,
			Note:       line.Note,
		}
		if unit, ok := line.UnitPrice.Amount(); ok {
			subtotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
			entry.Subtotal = PriceOf(subtotal)
			base = base.Add(subtotal)
		} else {
			complete = false
		}
		quote.Breakdown = append(quote.Breakdown, entry)
	}

	if !complete {
		return quote
	}

	quote.BaseTotal = PriceOf(base)
	if rule.FreeShippingMin != nil && base.GreaterThanOrEqual(*rule.FreeShippingMin) {
		quote.Freight = decimal.Zero
	}
	if rule.Coupon != nil {
		code := rule.Coupon.Code
		quote.CouponCode = &code
		quote.Discount = couponDiscount(*rule.Coupon, base)
	}
	if rule.Cashback != nil {
		quote.Cashback = cashbackAmount(*rule.Cashback, base, quote.Discount)
	}

	final := base.Add(quote.Freight).Sub(quote.Discount).Sub(quote.Cashback)
	if final.IsNegative() {
		final = decimal.Zero
	}
	quote.FinalTotal = PriceOf(final)
	return quote
}

func couponDiscount(coupon Coupon, base decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.Type {
	case enums.CouponTypePercent:
		discount = base.Mul(coupon.Value).Div(hundred)
	case enums.CouponTypeFixed:
		discount = coupon.Value
	default:
		return decimal.Zero
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}

func cashbackAmount(rate CashbackRate, base, discount decimal.Decimal) decimal.Decimal {
	if !rate.Percent.IsPositive() {
		return decimal.Zero
	}
	eligible := base.Sub(discount)
	if eligible.IsNegative() {
		eligible = decimal.Zero
	}
	return eligible.Mul(rate.Percent).Div(hundred).Round(2)
}

// RankQuotes orders quotes by final total, cheapest first. Absent totals go
// last and ties keep their input order.
func RankQuotes(quotes []MarketplaceQuote) {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].FinalTotal.Less(quotes[j].FinalTotal)
	})
}
