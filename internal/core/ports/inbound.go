package ports

import (
	"context"
	"io"

	"github.com/dartos/dartos/internal/core/domain"
)

// DocumentUploader is the inbound contract for accepting an upload. It never
// blocks on processing; the returned document is in the uploaded state.
type DocumentUploader interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor runs the asynchronous processing lifecycle for one
// document. It is fire-and-forget: failures are persisted on the record,
// never returned to the scheduler.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentQueryService answers natural-language queries over indexed content.
type DocumentQueryService interface {
	Answer(ctx context.Context, query string, topK int, customPrompt string) (*domain.QueryResult, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// DocumentDeleter removes a document record together with its stored file
// and indexed chunks.
type DocumentDeleter interface {
	Delete(ctx context.Context, id string) error
}
