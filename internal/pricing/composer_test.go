package pricing

import (
	"testing"

	"github.com/angelmondragon/mia-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func pricedLine(name string, qty int, unit string) ResolvedLine {
	return ResolvedLine{
		ItemLine:  NewItemLine(name, qty, Absent()),
		UnitPrice: PriceOf(dec(unit)),
		Source:    enums.PriceSourceCatalog,
	}
}

func unpricedLine(name string) ResolvedLine {
	return ResolvedLine{
		ItemLine: NewItemLine(name, 1, Absent()),
		Source:   enums.PriceSourceNone,
		Note:     NoteNotFound,
	}
}

func requireAmount(t *testing.T, p Price) decimal.Decimal {
	t.Helper()
	amount, ok := p.Amount()
	require.True(t, ok, "expected a present price")
	return amount
}

func TestComposeQuotePercentCoupon(t *testing.T) {
	rule := MarketplaceRule{
		Name:           "Petz",
		DefaultFreight: dec("19.90"),
		Coupon:         &Coupon{Code: "PET10", Type: enums.CouponTypePercent, Value: dec("10")},
	}

	quote := ComposeQuote(rule, []ResolvedLine{pricedLine("racao", 2, "100")})

	assert.True(t, requireAmount(t, quote.BaseTotal).Equal(dec("200")))
	assert.True(t, quote.Discount.Equal(dec("20")))
	require.NotNil(t, quote.CouponCode)
	assert.Equal(t, "PET10", *quote.CouponCode)
	assert.True(t, requireAmount(t, quote.FinalTotal).Equal(dec("199.90")))
}

func TestComposeQuoteFixedCouponIgnoresBase(t *testing.T) {
	rule := MarketplaceRule{Coupon: &Coupon{Code: "OFF15", Type: enums.CouponTypeFixed, Value: dec("15")}}

	for _, unit := range []string{"10", "200", "5000"} {
		quote := ComposeQuote(rule, []ResolvedLine{pricedLine("item", 1, unit)})
		assert.True(t, quote.Discount.Equal(dec("15")), "unit %s", unit)
	}
}

func TestComposeQuoteFreeShippingThreshold(t *testing.T) {
	threshold := dec("150")
	rule := MarketplaceRule{DefaultFreight: dec("20"), FreeShippingMin: &threshold}

	below := ComposeQuote(rule, []ResolvedLine{pricedLine("item", 1, "149.99")})
	assert.True(t, below.Freight.Equal(dec("20")))

	at := ComposeQuote(rule, []ResolvedLine{pricedLine("item", 1, "150")})
	assert.True(t, at.Freight.IsZero())
	assert.True(t, requireAmount(t, at.FinalTotal).Equal(dec("150")))
}

func TestComposeQuoteCashbackAfterDiscount(t *testing.T) {
	rule := MarketplaceRule{
		DefaultFreight: dec("10"),
		Coupon:         &Coupon{Code: "X", Type: enums.CouponTypeFixed, Value: dec("20")},
		Cashback:       &CashbackRate{Percent: dec("5")},
	}

	quote := ComposeQuote(rule, []ResolvedLine{pricedLine("a", 1, "80"), pricedLine("b", 2, "10")})

	// base 100, discount 20, cashback 5% of 80
	assert.True(t, quote.Cashback.Equal(dec("4")))
	assert.True(t, requireAmount(t, quote.FinalTotal).Equal(dec("86")))
}

func TestComposeQuoteRoundsToCentavos(t *testing.T) {
	rule := MarketplaceRule{
		Coupon:   &Coupon{Code: "X", Type: enums.CouponTypePercent, Value: dec("7")},
		Cashback: &CashbackRate{Percent: dec("3")},
	}

	quote := ComposeQuote(rule, []ResolvedLine{pricedLine("a", 1, "33.33")})

	assert.True(t, quote.Discount.Equal(dec("2.33")), "discount %s", quote.Discount)
	assert.True(t, quote.Cashback.Equal(dec("0.93")), "cashback %s", quote.Cashback)
	base := requireAmount(t, quote.BaseTotal)
	final := requireAmount(t, quote.FinalTotal)
	assert.True(t, final.Equal(base.Add(quote.Freight).Sub(quote.Discount).Sub(quote.Cashback)))
}

func TestComposeQuoteClampsAtZero(t *testing.T) {
	rule := MarketplaceRule{Coupon: &Coupon{Code: "BIG", Type: enums.CouponTypeFixed, Value: dec("500")}}

	quote := ComposeQuote(rule, []ResolvedLine{pricedLine("a", 1, "30")})

	assert.True(t, requireAmount(t, quote.FinalTotal).IsZero())
}

func TestComposeQuoteAbsentLineLeavesTotalsAbsent(t *testing.T) {
	rule := MarketplaceRule{
		DefaultFreight: dec("12"),
		Coupon:         &Coupon{Code: "X", Type: enums.CouponTypeFixed, Value: dec("5")},
	}

	quote := ComposeQuote(rule, []ResolvedLine{pricedLine("a", 1, "30"), unpricedLine("b")})

	assert.True(t, quote.BaseTotal.IsAbsent())
	assert.True(t, quote.FinalTotal.IsAbsent())
	assert.True(t, quote.Freight.Equal(dec("12")))
	assert.True(t, quote.Discount.IsZero())
	assert.Nil(t, quote.CouponCode)
	require.Len(t, quote.Breakdown, 2)
	assert.True(t, quote.Breakdown[1].Subtotal.IsAbsent())
	assert.Equal(t, NoteNotFound, quote.Breakdown[1].Note)
}

func TestComposeQuoteIsMonotonicInUnitPrice(t *testing.T) {
	rule := MarketplaceRule{
		DefaultFreight: dec("9.90"),
		Coupon:         &Coupon{Code: "X", Type: enums.CouponTypePercent, Value: dec("10")},
		Cashback:       &CashbackRate{Percent: dec("2")},
	}

	previous := decimal.Zero
	for i, unit := range []string{"10", "10.50", "25", "100", "1000"} {
		quote := ComposeQuote(rule, []ResolvedLine{pricedLine("a", 3, unit), pricedLine("b", 1, "40")})
		final := requireAmount(t, quote.FinalTotal)
		if i > 0 {
			assert.True(t, final.GreaterThan(previous), "final %s should exceed %s", final, previous)
		}
		previous = final
	}
}

func TestRankQuotes(t *testing.T) {
	quotes := []MarketplaceQuote{
		{Marketplace: "absent-1", FinalTotal: Absent()},
		{Marketplace: "b", FinalTotal: PriceOf(dec("50"))},
		{Marketplace: "a", FinalTotal: PriceOf(dec("20"))},
		{Marketplace: "absent-2", FinalTotal: Absent()},
		{Marketplace: "c", FinalTotal: PriceOf(dec("50"))},
	}

	RankQuotes(quotes)

	names := make([]string, len(quotes))
	for i, q := range quotes {
		names[i] = q.Marketplace
	}
	assert.Equal(t, []string{"a", "b", "c", "absent-1", "absent-2"}, names)
}
