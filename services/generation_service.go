package services

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"
)

// Generator produces a natural-language answer from a fully-assembled
// prompt. The prompt carries all retrieval context; there is no tool use or
// conversation state.
type Generator interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator wraps a genai client as a Generator.
func NewGeminiGenerator(client *genai.Client) Generator {
	return &geminiGenerator{
		client: client,
		model:  "gemini-2.5-flash",
	}
}

func (g *geminiGenerator) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	log.Printf("GENERATE: Sending prompt (%d chars) to %s", len(prompt), g.model)

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini api call failed: %w", err)
	}

	answer := result.Text()
	if answer == "" {
		return "I'm sorry, I couldn't generate a response.", nil
	}
	return answer, nil
}
