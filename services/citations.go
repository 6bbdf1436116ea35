package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github/contractiq/server/models"
)

// maxSources caps how many matches become numbered sources in the prompt
// and the response.
const maxSources = 5

// excerptLimit is the display truncation length for source excerpts.
const excerptLimit = 350

// citationRe finds "Source 1", "Sources 2 and 4", "Sources 1, 2, and 3"
// style references in a generated answer.
var citationRe = regexp.MustCompile(`(?i)\bSources?\s+(\d+(?:[\s,]+(?:and\s+)?\d+)*)`)

var digitsRe = regexp.MustCompile(`\d+`)

// cleanSnippet strips the [p:N] tag and collapses whitespace, recovering
// display-ready chunk text.
func cleanSnippet(s string) string {
	s = StripPageTag(s)
	return strings.TrimSpace(strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " "))
}

// documentNameFromMatch derives a display name for the match's source
// document: metadata file_name or source when available, otherwise the id
// prefix before the page/chunk suffix.
func documentNameFromMatch(match models.SearchMatch) string {
	var fileName string
	if match.Metadata != nil {
		if v, ok := match.Metadata["file_name"].(string); ok {
			fileName = strings.TrimSpace(v)
		}
		if fileName == "" {
			if v, ok := match.Metadata["source"].(string); ok {
				fileName = strings.TrimSpace(v)
			}
		}
	}

	if fileName == "" && match.ID != "" {
		fileName = pageInIDRe.Split(match.ID, 2)[0]
		if fileName == "" {
			fileName = strings.SplitN(match.ID, "_chunk_", 2)[0]
		}
		fileName = strings.TrimSpace(fileName)
		if fileName == "" {
			fileName = "Unknown Document"
		}
	}

	name := strings.NewReplacer(".pdf", "", ".PDF", "", "_", " ").Replace(fileName)
	return strings.TrimSpace(name)
}

// pageLabel renders a recovered page for display.
func pageLabel(page *int) string {
	if page == nil {
		return "Location Unknown"
	}
	return fmt.Sprintf("Page %d", *page)
}

// BuildSourcesFromMatches turns reranked matches into the numbered source
// list shown to the model and returned to the client. Matches with no
// readable text are skipped and do not consume a source number.
func BuildSourcesFromMatches(matches []models.SearchMatch) []models.Source {
	sources := make([]models.Source, 0, maxSources)

	for _, match := range matches {
		if len(sources) >= maxSources {
			break
		}

		text := cleanSnippet(match.Text)
		if text == "" {
			continue
		}

		page := RecoverPage(match)
		documentName := documentNameFromMatch(match)

		// Truncate by runes, not bytes, so a multibyte character at the
		// boundary never produces invalid UTF-8.
		excerpt := text
		if runes := []rune(text); len(runes) > excerptLimit {
			excerpt = string(runes[:excerptLimit]) + "..."
		}

		sources = append(sources, models.Source{
			SourceNum: len(sources) + 1,
			Document:  documentName,
			Page:      page,
			Label:     fmt.Sprintf("%s - %s", documentName, pageLabel(page)),
			Excerpt:   excerpt,
			Text:      text,
		})
	}

	return sources
}

// FilterCitedSources keeps only the sources the answer explicitly cites by
// number, preserving order. An answer citing nothing returns all sources:
// silence is treated as trusting the whole retrieval set, not as an empty
// citation.
func FilterCitedSources(answer string, sources []models.Source) []models.Source {
	cited := make(map[int]bool)
	for _, m := range citationRe.FindAllStringSubmatch(answer, -1) {
		for _, d := range digitsRe.FindAllString(m[1], -1) {
			if n, err := strconv.Atoi(d); err == nil {
				cited[n] = true
			}
		}
	}

	if len(cited) == 0 {
		return sources
	}

	filtered := make([]models.Source, 0, len(sources))
	for _, s := range sources {
		if cited[s.SourceNum] {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
