package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLegalDocument_ThresholdBoundary(t *testing.T) {
	// Exactly 3 distinct keywords: below the gate.
	three := "This agreement describes the contract and includes a clause."
	assert.False(t, IsLegalDocument(three))

	four := three + " Breach of any term voids it."
	assert.True(t, IsLegalDocument(four))
}

func TestIsLegalDocument_CaseInsensitive(t *testing.T) {
	text := "AGREEMENT ... CONTRACT ... CLAUSE ... WHEREAS ..."
	assert.True(t, IsLegalDocument(text))
}

func TestIsLegalDocument_SubstringSemantics(t *testing.T) {
	// "party" matches inside "partying"; loose matching is intentional.
	text := "partying indemnification subcontractor binding"
	assert.True(t, IsLegalDocument(text))
}

func TestIsLegalDocument_RepeatedKeywordCountsOnce(t *testing.T) {
	text := strings.Repeat("agreement ", 50)
	assert.False(t, IsLegalDocument(text))
}

func TestIsLegalDocument_NonLegalText(t *testing.T) {
	assert.False(t, IsLegalDocument("Quarterly revenue grew 4% on strong cloud demand."))
	assert.False(t, IsLegalDocument(""))
}
