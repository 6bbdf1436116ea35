package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github/contractiq/server/models"
)

// IndexService is the namespaced text index the pipeline stores chunks in
// and searches against. Implementations may silently drop document metadata,
// which is why provenance is redundantly encoded in ids and text tags.
type IndexService interface {
	// CreateNamespace is idempotent: creating an existing namespace is a
	// benign no-op.
	CreateNamespace(ctx context.Context, namespace string) error
	Upload(ctx context.Context, namespace string, docs []models.StoredDocument) error
	Search(ctx context.Context, namespace, query string, topK int) ([]models.SearchMatch, error)
}

// chromaIndex maps each namespace onto its own Chroma collection.
type chromaIndex struct {
	client   chromago.Client
	embedder Embedder
	// Pause after upload before reporting success. Writes are not
	// immediately visible to search; this is the compensating delay.
	settleDelay time.Duration
}

// NewChromaIndex creates the Chroma-backed index service. settleDelay may be
// zero in tests.
func NewChromaIndex(client chromago.Client, embedder Embedder, settleDelay time.Duration) IndexService {
	return &chromaIndex{
		client:      client,
		embedder:    embedder,
		settleDelay: settleDelay,
	}
}

func (s *chromaIndex) collection(ctx context.Context, namespace string) (chromago.Collection, error) {
	collection, err := s.client.GetOrCreateCollection(
		ctx,
		namespace,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "contract workspace"),
				chromago.NewStringAttribute("created_by", "contract_index"),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %q: %w", namespace, err)
	}
	return collection, nil
}

// CreateNamespace implements IndexService. GetOrCreateCollection already has
// the required idempotent semantics.
func (s *chromaIndex) CreateNamespace(ctx context.Context, namespace string) error {
	_, err := s.collection(ctx, namespace)
	if err == nil {
		log.Printf("INDEX: Namespace %q ready", namespace)
	}
	return err
}

// Upload implements IndexService. Each document is embedded and added with
// its id, text and metadata, then the settle delay runs so callers can treat
// a returned nil as "searchable", not just "written".
func (s *chromaIndex) Upload(ctx context.Context, namespace string, docs []models.StoredDocument) error {
	collection, err := s.collection(ctx, namespace)
	if err != nil {
		return err
	}

	log.Printf("INDEX: Uploading %d documents to namespace %q", len(docs), namespace)
	for _, doc := range docs {
		vector, err := s.embedder.EmbedText(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("could not embed chunk %s: %w", doc.ID, err)
		}

		attrs := []*chromago.MetaAttribute{
			chromago.NewStringAttribute("source", doc.Metadata.Source),
			chromago.NewStringAttribute("file_name", doc.Metadata.FileName),
			chromago.NewIntAttribute("chunk_index", int64(doc.Metadata.ChunkIndex)),
			chromago.NewIntAttribute("total_chunks", int64(doc.Metadata.TotalChunks)),
			chromago.NewIntAttribute("word_count", int64(doc.Metadata.WordCount)),
		}
		if doc.Metadata.Page != nil {
			attrs = append(attrs, chromago.NewIntAttribute("page", int64(*doc.Metadata.Page)))
		}

		err = collection.Add(ctx,
			chromago.WithIDs(chromago.DocumentID(doc.ID)),
			chromago.WithTexts(doc.Text),
			chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
			chromago.WithMetadatas(chromago.NewDocumentMetadata(attrs...)),
		)
		if err != nil {
			return fmt.Errorf("failed to add chunk %s to index: %w", doc.ID, err)
		}
	}

	if s.settleDelay > 0 {
		log.Printf("INDEX: Waiting %s for indexing to settle...", s.settleDelay)
		select {
		case <-time.After(s.settleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	log.Printf("INDEX: Upload complete: %d chunks", len(docs))
	return nil
}

// Search implements IndexService: embed the query, run a nearest-neighbor
// lookup, flatten the results into SearchMatches.
func (s *chromaIndex) Search(ctx context.Context, namespace, query string, topK int) ([]models.SearchMatch, error) {
	collection, err := s.collection(ctx, namespace)
	if err != nil {
		return nil, err
	}

	queryVector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query text: %w", err)
	}

	results, err := collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(queryVector)),
		chromago.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	var matches []models.SearchMatch
	idGroups := results.GetIDGroups()
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()

	if len(documentGroups) > 0 {
		for i, doc := range documentGroups[0] {
			if doc.ContentString() == "" {
				continue
			}

			match := models.SearchMatch{Text: doc.ContentString()}
			if len(idGroups) > 0 && i < len(idGroups[0]) {
				match.ID = string(idGroups[0][i])
			}
			if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
				match.Metadata = flattenMetadata(metadataGroups[0][i])
			}
			matches = append(matches, match)
		}
	}

	log.Printf("INDEX: Search in %q returned %d matches", namespace, len(matches))
	return matches, nil
}

// flattenMetadata converts a DocumentMetadata to a plain map. The struct has
// no public accessor for its values, so round-trip through JSON. Returns nil
// on any failure, which downstream treats as the metadata-dropped case.
func flattenMetadata(metadata chromago.DocumentMetadata) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Printf("WARN: could not marshal metadata: %v", err)
		return nil
	}
	var metaMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metaMap); err != nil {
		log.Printf("WARN: could not unmarshal metadata: %v", err)
		return nil
	}
	return metaMap
}
