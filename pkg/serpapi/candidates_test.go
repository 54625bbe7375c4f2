package serpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
)

func TestParseCandidatesMapsAliases(t *testing.T) {
	body := []byte(`{
		"shopping_results": [
			{"title": "A", "price": "R$ 10,00", "link": "https://a.test", "source": "Amazon"},
			{"product_title": "B", "extracted_price": 1234.5, "product_link": "https://b.test", "store": "Magalu"},
			{"name": "C", "price_string": "R$ 3", "serpapi_product_link": "https://c.test"},
			{"price": "R$ 99"}
		]
	}`)

	got, err := ParseCandidates(body)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "R$ 10,00", got[0].PriceRaw)
	assert.Equal(t, "https://a.test", got[0].Link)
	assert.Equal(t, "Amazon", got[0].Source)

	assert.Equal(t, "B", got[1].Title)
	assert.Equal(t, "1234.5", got[1].PriceRaw)
	assert.Equal(t, "https://b.test", got[1].Link)
	assert.Equal(t, "Magalu", got[1].Source)

	assert.Equal(t, "C", got[2].Title)
	assert.Equal(t, "R$ 3", got[2].PriceRaw)
	assert.Equal(t, "https://c.test", got[2].Link)
	assert.Empty(t, got[2].Source)
}

func TestParseCandidatesPrefersFirstNonEmptyArray(t *testing.T) {
	body := []byte(`{"shopping_results": [], "organic_results": [{"title": "Org", "price": "R$ 5,00"}]}`)
	got, err := ParseCandidates(body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Org", got[0].Title)
}

func TestParseCandidatesSkipsBlankAliases(t *testing.T) {
	body := []byte(`{"shopping_results": [{"title": "X", "price": "  ", "extracted_price": 42}]}`)
	got, err := ParseCandidates(body)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "42", got[0].PriceRaw)
}

func TestParseCandidatesNoResultsIsEmpty(t *testing.T) {
	got, err := ParseCandidates([]byte(`{"error": "Google hasn't returned any results for this query."}`))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ParseCandidates([]byte(`{"search_metadata": {"status": "Success"}}`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseCandidatesUpstreamError(t *testing.T) {
	_, err := ParseCandidates([]byte(`{"error": "Your account has run out of searches."}`))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestParseCandidatesInvalidJSON(t *testing.T) {
	_, err := ParseCandidates([]byte(`<html>`))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
