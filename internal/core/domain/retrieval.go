package domain

// Chunk is one indexed fragment of a document's extracted text.
type Chunk struct {
	DocumentID string  `json:"document_id"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
	Score      float64 `json:"score,omitempty"`
}

// QueryResult carries the generated answer together with the retrieved
// evidence, so callers always get the raw chunks even when generation
// degrades to an explanatory message.
type QueryResult struct {
	Query    string   `json:"query"`
	Response string   `json:"response"`
	Chunks   []string `json:"relevant_chunks"`
}

// TextVerdict is the outcome of the extracted-text quality gate.
// Invalid text carries the specific reason of the first failing check.
type TextVerdict struct {
	Valid  bool
	Reason string
}
