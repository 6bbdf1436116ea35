package services

import (
	"regexp"
	"strconv"

	"github/contractiq/server/models"
)

var (
	// Anchored on purpose: a page number mentioned mid-text must not be
	// mistaken for the provenance tag.
	pageTagPrefixRe = regexp.MustCompile(`^\[p:(\d+)\]\s*`)
	pageInIDRe      = regexp.MustCompile(`_p(\d+)_chunk_`)
)

// pageRecovery is one strategy for recovering a match's source page.
// Returns nil when the signal is absent or unparseable.
type pageRecovery func(models.SearchMatch) *int

// metadataPage reads the structured page field, tolerating the numeric types
// a JSON round trip may produce.
func metadataPage(match models.SearchMatch) *int {
	if match.Metadata == nil {
		return nil
	}
	raw, ok := match.Metadata["page"]
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		return &v
	case int64:
		n := int(v)
		return &n
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}
	return nil
}

// textPrefixTag matches a [p:N] tag at the very start of the stored text.
func textPrefixTag(match models.SearchMatch) *int {
	m := pageTagPrefixRe.FindStringSubmatch(match.Text)
	if m == nil {
		return nil
	}
	if n, err := strconv.Atoi(m[1]); err == nil {
		return &n
	}
	return nil
}

// idSuffixPattern reads the _pN_chunk_ segment of the document id.
func idSuffixPattern(match models.SearchMatch) *int {
	m := pageInIDRe.FindStringSubmatch(match.ID)
	if m == nil {
		return nil
	}
	if n, err := strconv.Atoi(m[1]); err == nil {
		return &n
	}
	return nil
}

// pageRecoveries is the fallback chain, in strict priority order.
var pageRecoveries = []pageRecovery{metadataPage, textPrefixTag, idSuffixPattern}

// RecoverPage reconstructs the source page of a search match. Tries each
// recovery strategy in order and returns the first hit. A nil result means
// every signal was lost ("Location Unknown") and is not an error.
func RecoverPage(match models.SearchMatch) *int {
	for _, strategy := range pageRecoveries {
		if page := strategy(match); page != nil {
			return page
		}
	}
	return nil
}

// StripPageTag removes a leading [p:N] tag, recovering the clean chunk text.
func StripPageTag(text string) string {
	return pageTagPrefixRe.ReplaceAllString(text, "")
}
