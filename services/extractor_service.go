package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"

	"github/contractiq/server/models"
)

// ErrNoExtractableText signals a PDF that parsed but yielded no text on any
// page. Distinct from ErrNotLegalContract so the upload endpoint can show a
// specific message per failure.
var ErrNoExtractableText = errors.New("pdf contains no extractable text")

func init() {
	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	if err := license.SetMeteredKey(os.Getenv("UNIDOC_LICENSE_KEY")); err != nil {
		fmt.Printf("ERROR: Failed to set Unidoc license key: %v. PDF processing will fail.\n", err)
	}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// cleanPageText normalizes extracted page text to a single line. It does NOT
// touch the [Page N] markers added later.
func cleanPageText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, `\n`, " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// ExtractPages reads a PDF and returns one RawPage per page that has text.
// Page numbers are 1-indexed; empty pages are omitted.
func ExtractPages(r io.ReadSeeker) ([]models.RawPage, error) {
	pdfReader, err := model.NewPdfReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, fmt.Errorf("failed to read page count: %w", err)
	}

	var pages []models.RawPage
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, fmt.Errorf("failed to create extractor for page %d: %w", i, err)
		}

		text, err := ex.ExtractText()
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", i, err)
		}

		cleaned := cleanPageText(text)
		if cleaned == "" {
			continue
		}
		pages = append(pages, models.RawPage{PageNumber: i, Text: cleaned})
	}

	log.Printf("EXTRACT: Got %d non-empty pages out of %d", len(pages), numPages)
	return pages, nil
}

// AnnotatePages concatenates pages into a single string, each page prefixed
// with an inline [Page N] marker. The markers are the only page identity
// that survives chunking.
func AnnotatePages(pages []models.RawPage) string {
	var sb strings.Builder
	for _, p := range pages {
		sb.WriteString(fmt.Sprintf("[Page %d] %s\n\n", p.PageNumber, p.Text))
	}
	return strings.TrimSpace(sb.String())
}

// ExtractAnnotatedText is the ingestion entry point for a PDF stream. It
// returns the page-annotated full text or ErrNoExtractableText.
func ExtractAnnotatedText(r io.ReadSeeker) (string, error) {
	pages, err := ExtractPages(r)
	if err != nil {
		return "", err
	}
	annotated := AnnotatePages(pages)
	if annotated == "" {
		return "", ErrNoExtractableText
	}
	log.Printf("EXTRACT: Annotated text is %d characters", len(annotated))
	return annotated, nil
}
