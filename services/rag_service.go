package services

import (
	"context"
	"fmt"
	"io"
	"log"

	"github/contractiq/server/models"
)

// RAGService is the contract-intelligence pipeline: ingest PDFs into a
// namespace, answer questions from what was ingested.
type RAGService interface {
	// UploadContract runs extract -> classify -> chunk -> upload for one
	// PDF and returns the number of chunks stored. Returns
	// ErrNoExtractableText or ErrNotLegalContract for the two document
	// rejection cases.
	UploadContract(ctx context.Context, filename string, pdf io.ReadSeeker, namespace string) (int, error)

	// Query retrieves, reranks, generates and cites. TopK <= 0 falls back
	// to the default of 10 candidates from the index.
	Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
}

// DefaultSearchTopK is how many candidates the index returns before the MMR
// rerank downsizes them.
const DefaultSearchTopK = 10

type ragServiceImpl struct {
	index     IndexService
	embedder  Embedder
	generator Generator
}

// NewRAGService wires the pipeline from its collaborators.
func NewRAGService(index IndexService, embedder Embedder, generator Generator) RAGService {
	return &ragServiceImpl{
		index:     index,
		embedder:  embedder,
		generator: generator,
	}
}

// UploadContract implements RAGService.
func (r *ragServiceImpl) UploadContract(ctx context.Context, filename string, pdf io.ReadSeeker, namespace string) (int, error) {
	log.Printf("SERVICE: Processing %q into namespace %q", filename, namespace)

	annotated, err := ExtractAnnotatedText(pdf)
	if err != nil {
		return 0, err
	}

	if !IsLegalDocument(annotated) {
		return 0, ErrNotLegalContract
	}

	docs, err := BuildStoredDocuments(annotated, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to chunk %q: %w", filename, err)
	}

	if err := r.index.CreateNamespace(ctx, namespace); err != nil {
		return 0, err
	}
	if err := r.index.Upload(ctx, namespace, docs); err != nil {
		return 0, err
	}

	log.Printf("SERVICE: Stored %d chunks for %q", len(docs), filename)
	return len(docs), nil
}

// Query implements RAGService.
func (r *ragServiceImpl) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	topK := req.TopK
	if topK <= 0 {
		topK = DefaultSearchTopK
	}
	log.Printf("SERVICE: Querying %q in namespace %q (top_k=%d)", req.Query, req.Namespace, topK)

	matches, err := r.index.Search(ctx, req.Namespace, req.Query, topK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		return &models.QueryResponse{
			Answer:  "No relevant contract sections found. Please upload contracts first to this workspace.",
			Sources: []models.Source{},
		}, nil
	}

	reranked, err := RerankMMR(ctx, r.embedder, matches, req.Query, DefaultRerankTopK, DefaultMMRLambda)
	if err != nil {
		return nil, fmt.Errorf("rerank failed: %w", err)
	}

	sources := BuildSourcesFromMatches(reranked)
	if len(sources) == 0 {
		return &models.QueryResponse{
			Answer:  "Found matches but no readable text.",
			Sources: []models.Source{},
		}, nil
	}

	answer, err := r.generator.GenerateAnswer(ctx, BuildContractPrompt(req.Query, sources))
	if err != nil {
		return nil, fmt.Errorf("could not generate answer: %w", err)
	}

	if IsOffTopicAnswer(answer) {
		// The model refused; citing sources would be misleading.
		return &models.QueryResponse{Answer: answer, Sources: []models.Source{}}, nil
	}

	return &models.QueryResponse{
		Answer:  answer,
		Sources: FilterCitedSources(answer, sources),
	}, nil
}
