package pricing

import (
	"context"
	"strings"
	"sync"

	"github.com/angelmondragon/mia-backend/pkg/search"
)

type memoEntry struct {
	candidates []search.Candidate
	err        error
}

// memoSearcher remembers results and failures per query for the lifetime of
// one basket computation.
type memoSearcher struct {
	next    search.Searcher
	mu      sync.Mutex
	entries map[string]memoEntry
}

func newMemoSearcher(next search.Searcher) *memoSearcher {
	return &memoSearcher{next: next, entries: make(map[string]memoEntry)}
}

func (m *memoSearcher) Search(ctx context.Context, query string) ([]search.Candidate, error) {
	key := strings.TrimSpace(query)

	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[key]; ok {
		return entry.candidates, entry.err
	}
	candidates, err := m.next.Search(ctx, key)
	m.entries[key] = memoEntry{candidates: candidates, err: err}
	return candidates, err
}
