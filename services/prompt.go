package services

import (
	"fmt"
	"strings"

	"github/contractiq/server/models"
)

// The three fixed refusal strings the model is instructed to emit verbatim.
// The query pipeline matches on them to suppress the source list.
const (
	refusalNotLegal   = "I can only analyze legal contracts. The uploaded document does not appear to be a legal contract."
	refusalOffTopic   = "This question is outside the scope of legal contract analysis. Please ask about contract terms, clauses, obligations, or legal provisions."
	refusalNotInScope = "The provided sources do not contain information relevant to this legal question."
)

var offTopicPhrases = []string{
	"i can only analyze legal contracts",
	"this question is outside the scope",
	"the provided sources do not contain information relevant to this legal question",
}

// IsOffTopicAnswer reports whether the model refused to answer with one of
// the fixed refusal strings.
func IsOffTopicAnswer(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range offTopicPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// BuildContractPrompt assembles the strict legal-analyst prompt: numbered
// sources with document name and page, followed by the question. The
// instruction block constrains the model to the given sources and to the
// literal (Source N) citation pattern.
func BuildContractPrompt(query string, sources []models.Source) string {
	contextParts := make([]string, 0, len(sources))
	for _, s := range sources {
		contextParts = append(contextParts, fmt.Sprintf("Source %d: %s - %s\n%s",
			s.SourceNum, s.Document, pageLabel(s.Page), s.Text))
	}
	sourcesText := strings.Join(contextParts, "\n\n---\n\n")

	return fmt.Sprintf(`You are a strict Legal Contract Analyst with zero tolerance for off-topic requests.

YOUR RULES - FOLLOW THEM WITHOUT EXCEPTION:

1. ONLY answer questions that are directly about legal contracts, agreements, clauses, terms, obligations, liabilities, payments, termination, indemnification, or any legally binding content.

2. If the uploaded sources are NOT legal contracts (e.g. financial reports, news articles, invoices, resumes, research papers, emails, or any non-legal document), respond ONLY with:
   "%s"

3. If the user's question is not related to the legal content in the sources (e.g. asking about revenue, stock prices, general business info, personal advice), respond ONLY with:
   "%s"

4. NEVER use outside knowledge. Use ONLY the sources below.

5. NEVER guess, assume, or infer information not explicitly stated in the sources.

6. Always cite your answer using (Source 1), (Source 2), etc. No citation = no answer.

7. If the answer is genuinely not found in the sources, respond ONLY with:
   "%s"

---

Sources:
%s

---

Question: %s

Answer:`, refusalNotLegal, refusalOffTopic, refusalNotInScope, sourcesText, query)
}
