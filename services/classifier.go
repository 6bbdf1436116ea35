package services

import (
	"errors"
	"strings"
)

// ErrNotLegalContract is returned when an uploaded document fails the legal
// keyword gate. Callers surface it as its own user-facing message.
var ErrNotLegalContract = errors.New("document is not a legal contract")

// legalKeywords are stems matched as case-insensitive substrings, so
// "indemnif" covers indemnify/indemnification and "party" matches inside
// larger words. The loose semantics are intentional: this is a cheap,
// false-positive-tolerant gate.
var legalKeywords = []string{
	"agreement", "contract", "clause", "indemnif", "liability",
	"termination", "obligation", "whereas", "hereinafter", "party",
	"breach", "jurisdiction", "governing law", "warranty", "consultant",
	"commission", "execute", "enforceable", "binding", "subcontract",
}

// legalKeywordThreshold is the minimum number of distinct keyword hits for a
// document to pass the gate.
const legalKeywordThreshold = 4

// IsLegalDocument reports whether the text contains enough legal keywords to
// be treated as a contract.
func IsLegalDocument(text string) bool {
	lower := strings.ToLower(text)
	matches := 0
	for _, kw := range legalKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	return matches >= legalKeywordThreshold
}
