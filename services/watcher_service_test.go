package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/contractiq/server/models"
)

// recordingRAGService captures uploads and returns a canned error per
// filename.
type recordingRAGService struct {
	uploads    []string
	namespaces []string
	errs       map[string]error
}

func (s *recordingRAGService) UploadContract(_ context.Context, filename string, _ io.ReadSeeker, namespace string) (int, error) {
	s.uploads = append(s.uploads, filename)
	s.namespaces = append(s.namespaces, namespace)
	if err := s.errs[filename]; err != nil {
		return 0, err
	}
	return 3, nil
}

func (s *recordingRAGService) Query(context.Context, models.QueryRequest) (*models.QueryResponse, error) {
	return nil, errors.New("not used")
}

func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake content"), 0644))
	return path
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF("/drop/nda.pdf"))
	assert.True(t, isPDF("/drop/NDA.PDF"))
	assert.False(t, isPDF("/drop/notes.txt"))
	assert.False(t, isPDF("/drop/nda.pdf.swp"))
	assert.False(t, isPDF("/drop/pdf"))
}

func TestWatcherIngestFile(t *testing.T) {
	t.Run("successful ingest reaches the configured namespace", func(t *testing.T) {
		svc := &recordingRAGService{}
		w := NewContractWatcher(svc, "drop-ns")

		w.ingestFile(context.Background(), writeTempFile(t, "nda.pdf"))

		require.Equal(t, []string{"nda.pdf"}, svc.uploads)
		assert.Equal(t, []string{"drop-ns"}, svc.namespaces)
	})

	t.Run("rejected documents are skipped, not fatal", func(t *testing.T) {
		svc := &recordingRAGService{errs: map[string]error{
			"invoice.pdf": ErrNotLegalContract,
			"blank.pdf":   ErrNoExtractableText,
			"broken.pdf":  errors.New("index unavailable"),
		}}
		w := NewContractWatcher(svc, "drop-ns")
		ctx := context.Background()

		// Each failure is logged and swallowed; the next drop still gets
		// ingested.
		w.ingestFile(ctx, writeTempFile(t, "invoice.pdf"))
		w.ingestFile(ctx, writeTempFile(t, "blank.pdf"))
		w.ingestFile(ctx, writeTempFile(t, "broken.pdf"))
		w.ingestFile(ctx, writeTempFile(t, "nda.pdf"))

		assert.Equal(t, []string{"invoice.pdf", "blank.pdf", "broken.pdf", "nda.pdf"}, svc.uploads)
	})

	t.Run("unreadable path never reaches the service", func(t *testing.T) {
		svc := &recordingRAGService{}
		w := NewContractWatcher(svc, "drop-ns")

		w.ingestFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))

		assert.Empty(t, svc.uploads)
	})
}
