package serpapi

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"

	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/angelmondragon/mia-backend/pkg/search"
)

// Field aliases seen across SerpAPI result shapes. New aliases go here and
// nowhere else.
var (
	resultArrays  = []string{"shopping_results", "inline_shopping_results", "organic_results"}
	titleAliases  = []string{"title", "product_title", "name"}
	priceAliases  = []string{"price", "extracted_price", "price_string"}
	linkAliases   = []string{"product_link", "link", "serpapi_product_link", "product_url"}
	sourceAliases = []string{"source", "store", "seller"}
)

// Upstream error text that means "no results" rather than a failure.
var emptyResultMarkers = []string{
	"hasn't returned any results",
	"returned any results for this query",
}

var errInvalidPayload = errors.New("search response is not valid json")

// ParseCandidates maps a SerpAPI response body into candidates, using the
// first non-empty result array. Items without a title are dropped.
func ParseCandidates(body []byte) ([]search.Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errInvalidPayload, "decode search response")
	}
	doc := gjson.ParseBytes(body)

	for _, path := range resultArrays {
		items := doc.Get(path)
		if !items.IsArray() || len(items.Array()) == 0 {
			continue
		}
		return candidatesFrom(items), nil
	}

	if msg := doc.Get("error").String(); msg != "" && !isEmptyResultMessage(msg) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New(msg), "search returned an error")
	}
	return []search.Candidate{}, nil
}

func candidatesFrom(items gjson.Result) []search.Candidate {
	out := make([]search.Candidate, 0, len(items.Array()))
	items.ForEach(func(_, item gjson.Result) bool {
		title := firstValue(item, titleAliases)
		if title == "" {
			return true
		}
		out = append(out, search.Candidate{
			Title:    title,
			PriceRaw: firstValue(item, priceAliases),
			Link:     firstValue(item, linkAliases),
			Source:   firstValue(item, sourceAliases),
		})
		return true
	})
	return out
}

// firstValue returns the first alias holding a non-empty scalar. Numbers keep
// their JSON text so "1234.5" survives untouched.
func firstValue(item gjson.Result, aliases []string) string {
	for _, alias := range aliases {
		v := item.Get(alias)
		switch v.Type {
		case gjson.String:
			if s := strings.TrimSpace(v.Str); s != "" {
				return s
			}
		case gjson.Number:
			return v.Raw
		}
	}
	return ""
}

func isEmptyResultMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, marker := range emptyResultMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
