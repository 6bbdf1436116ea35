package services

import (
	"context"
	"fmt"
	"log"
	"math"

	"github/contractiq/server/models"
)

// Defaults for the rerank step. The reranked set is always a strict
// downsizing of what the index returned.
const (
	DefaultRerankTopK = 5
	DefaultMMRLambda  = 0.5
)

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RerankMMR re-selects topK matches by Maximum Marginal Relevance: each step
// picks the candidate maximizing
//
//	lambda*relevance(query) - (1-lambda)*max-similarity(already selected)
//
// so relevance is balanced against redundancy among the picks. Ties go to
// the first-encountered candidate (strict > comparison). Query and candidate
// texts are embedded once up front; the greedy loop is O(topK * n)
// similarity evaluations.
func RerankMMR(ctx context.Context, embedder Embedder, matches []models.SearchMatch, query string, topK int, lambda float64) ([]models.SearchMatch, error) {
	if len(matches) == 0 {
		return []models.SearchMatch{}, nil
	}

	queryEmb, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}
	docEmbs, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed candidates: %w", err)
	}

	var selected []int
	remaining := make([]int, len(matches))
	for i := range remaining {
		remaining[i] = i
	}

	steps := topK
	if len(matches) < steps {
		steps = len(matches)
	}

	for range steps {
		bestIdx := -1
		bestPos := -1
		bestScore := math.Inf(-1)

		for pos, i := range remaining {
			relevance := cosineSimilarity(queryEmb, docEmbs[i])

			// 0 with nothing selected yet, else the max similarity to
			// any already-selected candidate (may be negative).
			redundancy := 0.0
			for k, j := range selected {
				sim := cosineSimilarity(docEmbs[i], docEmbs[j])
				if k == 0 || sim > redundancy {
					redundancy = sim
				}
			}

			score := lambda*relevance - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
				bestPos = pos
			}
		}

		if bestIdx < 0 {
			break
		}
		selected = append(selected, bestIdx)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	out := make([]models.SearchMatch, 0, len(selected))
	for _, i := range selected {
		out = append(out, matches[i])
	}
	log.Printf("MMR: Reranked %d matches down to %d", len(matches), len(out))
	return out, nil
}
