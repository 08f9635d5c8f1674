package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dartos/dartos/internal/core/domain"
	"github.com/dartos/dartos/internal/core/ports"
)

// UploadDocumentUseCase accepts a PDF, stores the raw file, creates the
// uploaded record and publishes the processing event. The request path never
// waits for processing.
type UploadDocumentUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
) *UploadDocumentUseCase {
	return &UploadDocumentUseCase{
		repo:    repo,
		storage: storage,
		queue:   queue,
	}
}

func (uc *UploadDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if err := validateUpload(filename, mimeType); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save uploaded file: %w", err)
	}

	doc := &domain.Document{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: storageKey,
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	if err := uc.queue.PublishDocumentUploaded(ctx, doc.ID); err != nil {
		return nil, fmt.Errorf("publish uploaded event: %w", err)
	}

	return doc, nil
}

// validateUpload is the MIME/extension check and nothing more; content-level
// problems are caught later by the quality gate.
func validateUpload(filename, mimeType string) error {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", errors.New("file type not allowed, only .pdf is accepted"))
	}
	if mimeType != "" && !strings.HasPrefix(mimeType, "application/pdf") {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", fmt.Errorf("invalid content type %q, must be PDF", mimeType))
	}
	return nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	// filepath.Base turns an empty name into ".".
	if base == "" || base == "." {
		return "document.pdf"
	}
	return base
}
