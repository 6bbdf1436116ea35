package models

// OllamaEmbedRequest is the body posted to Ollama's embeddings endpoint,
// one prompt per call.
type OllamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// OllamaEmbedResponse carries the vector Ollama returns for a prompt.
type OllamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}
