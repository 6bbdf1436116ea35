package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/contractiq/server/models"
)

func TestRecoverPage_MetadataWins(t *testing.T) {
	// Metadata says 3, the text tag says 7: tier 1 wins.
	match := models.SearchMatch{
		ID:       "nda_p9_chunk_0",
		Text:     "[p:7] the indemnification clause",
		Metadata: map[string]interface{}{"page": float64(3)},
	}
	page := RecoverPage(match)
	require.NotNil(t, page)
	assert.Equal(t, 3, *page)
}

func TestRecoverPage_TextPrefixSecond(t *testing.T) {
	match := models.SearchMatch{
		ID:   "nda_p9_chunk_0",
		Text: "[p:7] the indemnification clause",
	}
	page := RecoverPage(match)
	require.NotNil(t, page)
	assert.Equal(t, 7, *page)
}

func TestRecoverPage_IDSuffixLast(t *testing.T) {
	match := models.SearchMatch{
		ID:   "nda_p9_chunk_0",
		Text: "the indemnification clause",
	}
	page := RecoverPage(match)
	require.NotNil(t, page)
	assert.Equal(t, 9, *page)
}

func TestRecoverPage_AllSignalsLost(t *testing.T) {
	match := models.SearchMatch{
		ID:   "some-opaque-id",
		Text: "the indemnification clause",
	}
	assert.Nil(t, RecoverPage(match))
}

func TestRecoverPage_TagMustBeAnchored(t *testing.T) {
	// A page reference mid-text is not a provenance tag.
	match := models.SearchMatch{
		ID:   "opaque",
		Text: "see [p:4] for details",
	}
	assert.Nil(t, RecoverPage(match))
}

func TestMetadataPage_NumericShapes(t *testing.T) {
	cases := map[string]interface{}{
		"float64": float64(2),
		"int":     2,
		"int64":   int64(2),
		"string":  "2",
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			page := metadataPage(models.SearchMatch{Metadata: map[string]interface{}{"page": v}})
			require.NotNil(t, page)
			assert.Equal(t, 2, *page)
		})
	}

	t.Run("unparseable string falls through", func(t *testing.T) {
		match := models.SearchMatch{
			Text:     "[p:5] text",
			Metadata: map[string]interface{}{"page": "two"},
		}
		page := RecoverPage(match)
		require.NotNil(t, page)
		assert.Equal(t, 5, *page)
	})

	t.Run("nil metadata", func(t *testing.T) {
		assert.Nil(t, metadataPage(models.SearchMatch{}))
	})
}
