package models

// QueryRequest is the body of POST /api/v1/query. TopK defaults to 10 when
// omitted.
type QueryRequest struct {
	Query     string `json:"query" binding:"required"`
	TopK      int    `json:"top_k"`
	Namespace string `json:"namespace" binding:"required"`
}
