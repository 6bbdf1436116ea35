package services

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// ContractWatcher auto-ingests PDF contracts dropped into a watched
// directory, feeding them through the same upload pipeline as the HTTP
// endpoint.
type ContractWatcher struct {
	ragService RAGService
	namespace  string
}

// NewContractWatcher creates a watcher ingesting into the given namespace.
func NewContractWatcher(ragService RAGService, namespace string) *ContractWatcher {
	return &ContractWatcher{
		ragService: ragService,
		namespace:  namespace,
	}
}

// Watch blocks until ctx is cancelled, ingesting every PDF created or
// written under dirPath. Failures are logged per file, never fatal: a bad
// drop must not take the watcher down.
func (w *ContractWatcher) Watch(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("WATCHER ERROR: Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isPDF(event.Name) {
					continue
				}

				// Editors and download managers often emit Create followed
				// by several Writes for the same file; each triggers a
				// re-ingest and chunk ids are deterministic, so the last
				// one wins.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					log.Printf("WATCHER: Contract dropped: %s. Ingesting...", event.Name)
					w.ingestFile(ctx, event.Name)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("WATCHER ERROR: %v", err)
			case <-ctx.Done():
				log.Println("WATCHER: Context cancelled, shutting down watcher.")
				return
			}
		}
	}()

	log.Printf("WATCHER: Watching contracts directory: %s", dirPath)
	if err := watcher.Add(dirPath); err != nil {
		log.Printf("WATCHER ERROR: Failed to add path to watcher: %v", err)
	}

	<-ctx.Done()
}

func (w *ContractWatcher) ingestFile(ctx context.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("WATCHER ERROR: Could not open %s: %v", path, err)
		return
	}
	defer f.Close()

	count, err := w.ragService.UploadContract(ctx, filepath.Base(path), f, w.namespace)
	switch {
	case errors.Is(err, ErrNotLegalContract):
		log.Printf("WATCHER: Skipping %s: not a legal contract", path)
	case errors.Is(err, ErrNoExtractableText):
		log.Printf("WATCHER: Skipping %s: no extractable text", path)
	case err != nil:
		log.Printf("WATCHER ERROR: Failed to ingest %s: %v", path, err)
	default:
		log.Printf("WATCHER: Ingested %s (%d chunks) into namespace %q", path, count, w.namespace)
	}
}

func isPDF(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}
