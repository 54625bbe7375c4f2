package pricing

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ParsePrice reads Brazilian-formatted currency text. Everything except
// digits, comma, period and minus is dropped. With both separators present the
// period groups thousands and the comma marks decimals; a lone comma is the
// decimal mark. Negative or unparseable input is absent.
func ParsePrice(raw string) Price {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		return Absent()
	}

	hasComma := strings.Contains(cleaned, ",")
	hasPeriod := strings.Contains(cleaned, ".")
	switch {
	case hasComma && hasPeriod:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case hasComma:
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Absent()
	}
	return PriceOf(amount)
}

// NormalizeName folds a product name for substring matching: diacritics are
// stripped, case is lowered and whitespace runs collapse to one space.
func NormalizeName(raw string) string {
	// transformers carry state, so build a fresh chain per call
	folder := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, raw)
	if err != nil {
		folded = raw
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
