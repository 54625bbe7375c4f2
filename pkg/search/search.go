// Package search defines the shape of live shopping-search results shared by
// the pricing resolver and the price tracker.
package search

import "context"

// Candidate is one raw observation returned by an external shopping search.
// PriceRaw keeps the upstream text untouched; parsing happens in pricing.
type Candidate struct {
	Title    string `json:"title"`
	PriceRaw string `json:"price_raw"`
	Link     string `json:"link,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Searcher runs a free-text shopping search. An empty slice with a nil error
// means the search worked and found nothing.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// SearcherFunc adapts a plain function to Searcher.
type SearcherFunc func(ctx context.Context, query string) ([]Candidate, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]Candidate, error) {
	return f(ctx, query)
}
