package services

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github/contractiq/server/models"
)

// Chunking parameters. The 50% overlap is deliberately large relative to the
// chunk size: it buys retrieval recall across chunk boundaries at the cost
// of extra storage and embedding work.
const (
	chunkSize    = 1000
	chunkOverlap = 500
)

var (
	pageMarkerRe      = regexp.MustCompile(`\[Page\s+(\d+)\]`)
	pageMarkerStripRe = regexp.MustCompile(`\[Page\s+\d+\]\s*`)
	unsafeIDCharRe    = regexp.MustCompile(`[^\w\-]`)
)

// SplitAnnotatedText breaks the page-annotated text into overlapping chunks
// using the recursive separator hierarchy: paragraphs, lines, sentences,
// words, characters. Empty chunks are dropped after trimming.
func SplitAnnotatedText(text string) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
	)

	raw, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	chunks := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		chunks = append(chunks, c)
	}
	log.Printf("CHUNK: Created %d chunks", len(chunks))
	return chunks, nil
}

// resolveChunkPage finds the last [Page N] marker inside the chunk. A chunk
// with no marker lies in a page's interior, so it inherits lastKnown.
func resolveChunkPage(chunk string, lastKnown *int) *int {
	matches := pageMarkerRe.FindAllStringSubmatch(chunk, -1)
	if len(matches) == 0 {
		return lastKnown
	}
	n, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return lastKnown
	}
	return &n
}

// StripPageMarkers removes all [Page N] markers from chunk text. The page is
// already captured in metadata by the time this runs.
func StripPageMarkers(text string) string {
	return strings.TrimSpace(pageMarkerStripRe.ReplaceAllString(text, ""))
}

// EmbedPageTag prepends a compact [p:N] tag so the page survives even if the
// storage backend drops structured metadata.
func EmbedPageTag(text string, page *int) string {
	if page == nil {
		return text
	}
	return fmt.Sprintf("[p:%d] %s", *page, text)
}

// ChunkID builds the document id, encoding name, resolved page and chunk
// index. An unknown page encodes as p0.
func ChunkID(safeName string, page *int, index int) string {
	p := 0
	if page != nil {
		p = *page
	}
	return fmt.Sprintf("%s_p%d_chunk_%d", safeName, p, index)
}

// BuildStoredDocuments turns annotated contract text into upload-ready
// documents: split, resolve each chunk's page, strip the markers, tag the
// text, then backfill total_chunks once the full set is known.
func BuildStoredDocuments(annotatedText, filename string) ([]models.StoredDocument, error) {
	chunks, err := SplitAnnotatedText(annotatedText)
	if err != nil {
		return nil, err
	}

	cleanName := strings.TrimSpace(strings.NewReplacer(".pdf", "", ".PDF", "").Replace(filename))
	safeName := unsafeIDCharRe.ReplaceAllString(cleanName, "_")

	var docs []models.StoredDocument
	var currentPage *int
	docIndex := 0

	for _, chunk := range chunks {
		currentPage = resolveChunkPage(chunk, currentPage)

		cleanChunk := StripPageMarkers(chunk)
		if cleanChunk == "" {
			continue
		}

		docs = append(docs, models.StoredDocument{
			ID:   ChunkID(safeName, currentPage, docIndex),
			Text: EmbedPageTag(cleanChunk, currentPage),
			Metadata: models.DocumentMetadata{
				Source:     cleanName,
				FileName:   filename,
				ChunkIndex: docIndex,
				Page:       currentPage,
				WordCount:  len(strings.Fields(cleanChunk)),
			},
		})
		docIndex++
	}

	// Second pass: attach the final count now that the set is complete.
	docs = backfillTotalChunks(docs)

	log.Printf("CHUNK: Built %d stored documents for %q", len(docs), filename)
	return docs, nil
}

func backfillTotalChunks(docs []models.StoredDocument) []models.StoredDocument {
	total := len(docs)
	out := make([]models.StoredDocument, 0, total)
	for _, d := range docs {
		d.Metadata.TotalChunks = total
		out = append(out, d)
	}
	return out
}
