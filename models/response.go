package models

// QueryResponse is the payload of a successful query.
type QueryResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// FileResult is the per-file outcome of a batch upload. Status is either
// "success" or "error"; a failed file never aborts its siblings.
type FileResult struct {
	Filename      string `json:"filename"`
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created,omitempty"`
	Message       string `json:"message,omitempty"`
}

// UploadResponse summarizes a batch contract upload.
type UploadResponse struct {
	Message     string       `json:"message"`
	TotalChunks int          `json:"total_chunks"`
	Results     []FileResult `json:"results"`
}
