package models

// RawPage is one page of extracted PDF text, 1-indexed. Pages with no
// extractable text are never materialized as RawPages.
type RawPage struct {
	PageNumber int
	Text       string
}

// DocumentMetadata travels with every stored chunk. The storage backend may
// drop it entirely, which is why page identity is also encoded in the
// document id and in a text prefix tag.
type DocumentMetadata struct {
	Source      string `json:"source"`
	FileName    string `json:"file_name"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
	Page        *int   `json:"page,omitempty"`
	WordCount   int    `json:"word_count"`
}

// StoredDocument is one upload-ready chunk of a contract.
type StoredDocument struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata DocumentMetadata `json:"metadata"`
}

// SearchMatch is a single result returned by the index. Metadata may be nil
// when the backend dropped it; Text may still carry the [p:N] prefix tag.
type SearchMatch struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Source is a citation entry presented to the model and returned to the
// client. Built fresh per query, never persisted.
type Source struct {
	SourceNum int    `json:"source_num"`
	Document  string `json:"document"`
	Page      *int   `json:"page"`
	Label     string `json:"source"`
	Excerpt   string `json:"excerpt"`
	// Text is the full cleaned chunk, fed to the model. Clients only see
	// the truncated excerpt.
	Text string `json:"-"`
}
