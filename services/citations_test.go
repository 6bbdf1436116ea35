package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/contractiq/server/models"
)

func fiveSources() []models.Source {
	sources := make([]models.Source, 5)
	for i := range sources {
		sources[i] = models.Source{SourceNum: i + 1, Document: "Contract"}
	}
	return sources
}

func sourceNums(sources []models.Source) []int {
	nums := make([]int, len(sources))
	for i, s := range sources {
		nums[i] = s.SourceNum
	}
	return nums
}

func TestFilterCitedSources(t *testing.T) {
	t.Run("single citations", func(t *testing.T) {
		out := FilterCitedSources("Per the clause (Source 2) and also (Source 4).", fiveSources())
		assert.Equal(t, []int{2, 4}, sourceNums(out))
	})

	t.Run("sources joined with and", func(t *testing.T) {
		out := FilterCitedSources("See (Sources 2 and 4).", fiveSources())
		assert.Equal(t, []int{2, 4}, sourceNums(out))
	})

	t.Run("comma list with oxford and", func(t *testing.T) {
		out := FilterCitedSources("Stated in (Sources 1, 2, and 3).", fiveSources())
		assert.Equal(t, []int{1, 2, 3}, sourceNums(out))
	})

	t.Run("case insensitive", func(t *testing.T) {
		out := FilterCitedSources("see SOURCE 3", fiveSources())
		assert.Equal(t, []int{3}, sourceNums(out))
	})

	t.Run("no citations returns everything", func(t *testing.T) {
		out := FilterCitedSources("no citation here", fiveSources())
		assert.Equal(t, []int{1, 2, 3, 4, 5}, sourceNums(out))
	})

	t.Run("original order preserved", func(t *testing.T) {
		out := FilterCitedSources("(Source 4) before (Source 1)", fiveSources())
		assert.Equal(t, []int{1, 4}, sourceNums(out))
	})

	t.Run("cited numbers outside the set filter everything", func(t *testing.T) {
		out := FilterCitedSources("(Source 9)", fiveSources())
		assert.Empty(t, out)
	})
}

func TestBuildSourcesFromMatches(t *testing.T) {
	page2 := 2
	matches := []models.SearchMatch{
		{
			ID:   "NDA_Agreement_p2_chunk_0",
			Text: "[p:2] The receiving party shall hold information in confidence.",
			Metadata: map[string]interface{}{
				"file_name": "NDA_Agreement.pdf",
				"page":      float64(2),
			},
		},
		{
			ID:   "NDA_Agreement_p3_chunk_4",
			Text: "Termination requires thirty days written notice.",
			// Metadata dropped by the backend.
		},
	}

	sources := BuildSourcesFromMatches(matches)
	require.Len(t, sources, 2)

	first := sources[0]
	assert.Equal(t, 1, first.SourceNum)
	assert.Equal(t, "NDA Agreement", first.Document)
	require.NotNil(t, first.Page)
	assert.Equal(t, page2, *first.Page)
	assert.Equal(t, "NDA Agreement - Page 2", first.Label)
	assert.Equal(t, "The receiving party shall hold information in confidence.", first.Excerpt)
	assert.NotContains(t, first.Excerpt, "[p:")

	second := sources[1]
	assert.Equal(t, 2, second.SourceNum)
	// Document name recovered from the id when metadata is gone.
	assert.Equal(t, "NDA Agreement", second.Document)
	require.NotNil(t, second.Page)
	assert.Equal(t, 3, *second.Page)
}

func TestBuildSourcesFromMatches_SkipsEmptyAndCaps(t *testing.T) {
	matches := []models.SearchMatch{
		{ID: "a_p1_chunk_0", Text: "[p:1] "},
	}
	for i := 0; i < 7; i++ {
		matches = append(matches, models.SearchMatch{
			ID:   "a_p1_chunk_1",
			Text: "[p:1] usable text",
		})
	}

	sources := BuildSourcesFromMatches(matches)
	require.Len(t, sources, maxSources)
	// The empty match consumed no source number.
	assert.Equal(t, 1, sources[0].SourceNum)
}

func TestBuildSourcesFromMatches_TruncatesExcerpt(t *testing.T) {
	long := strings.Repeat("liability ", 60) // ~600 chars
	sources := BuildSourcesFromMatches([]models.SearchMatch{
		{ID: "a_p1_chunk_0", Text: "[p:1] " + long},
	})
	require.Len(t, sources, 1)
	assert.Len(t, sources[0].Excerpt, excerptLimit+3)
	assert.True(t, strings.HasSuffix(sources[0].Excerpt, "..."))
	// The full text is kept for the prompt.
	assert.Equal(t, strings.TrimSpace(long), sources[0].Text)
}

func TestBuildSourcesFromMatches_TruncatesExcerptAtRuneBoundary(t *testing.T) {
	// "§" is two bytes, so byte offset 350 falls mid-rune.
	long := strings.Repeat("§", 400)
	sources := BuildSourcesFromMatches([]models.SearchMatch{
		{ID: "a_p1_chunk_0", Text: "[p:1] " + long},
	})
	require.Len(t, sources, 1)
	assert.True(t, utf8.ValidString(sources[0].Excerpt))
	assert.Equal(t, excerptLimit+3, utf8.RuneCountInString(sources[0].Excerpt))
	assert.True(t, strings.HasSuffix(sources[0].Excerpt, "..."))
}

func TestBuildSourcesFromMatches_UnknownDocument(t *testing.T) {
	sources := BuildSourcesFromMatches([]models.SearchMatch{
		{Text: "some text with no provenance at all"},
	})
	require.Len(t, sources, 1)
	assert.Equal(t, "", sources[0].Document)
	assert.Nil(t, sources[0].Page)
	assert.Contains(t, sources[0].Label, "Location Unknown")
}
