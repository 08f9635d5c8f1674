package ports

import (
	"context"
	"io"

	"github.com/dartos/dartos/internal/core/domain"
)

// DocumentRepository persists and reads document records. Status and error
// message are only ever written through UpdateStatus so the lifecycle owns
// every transition.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveContent(ctx context.Context, id string, content string) error
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores the uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes document-uploaded events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored file.
type TextExtractor interface {
	Extract(ctx context.Context, storagePath string) (string, error)
}

// QualityGate judges whether extracted text is trustworthy extraction output.
type QualityGate interface {
	Validate(text string) domain.TextVerdict
}

// Chunker splits normalized text into overlapping retrieval chunks.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunk and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the raw similarity store underneath the vector index.
type VectorStore interface {
	UpsertChunks(ctx context.Context, docID string, chunks []string, vectors [][]float32) error
	QueryByVector(ctx context.Context, vector []float32, limit int) ([]domain.Chunk, error)
	DeleteByDocument(ctx context.Context, docID string) error
	ChunksByDocument(ctx context.Context, docID string) ([]domain.Chunk, error)
}

// VectorIndex is the ingestion/search surface the pipeline talks to.
// Index replaces a document's chunks wholesale; Search degrades to an empty
// result on backing-store failure instead of returning an error.
type VectorIndex interface {
	Index(ctx context.Context, docID string, text string) error
	Search(ctx context.Context, query string, limit int) []string
	Delete(ctx context.Context, docID string) error
	Chunks(ctx context.Context, docID string) ([]string, error)
}

// AnswerGenerator creates the final user-facing answer from retrieved context.
type AnswerGenerator interface {
	Generate(ctx context.Context, query string, contextChunks []string, customPrompt string) (string, error)
}
