package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/dartos/dartos/internal/core/domain"
)

type deleteRepoFake struct {
	processRepoFake
	deleted []string
}

func (f *deleteRepoFake) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type deleteIndexFake struct {
	indexFake
	deleted   []string
	deleteErr error
}

func (f *deleteIndexFake) Delete(_ context.Context, docID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, docID)
	return nil
}

func TestDeleteRemovesChunksRecordAndFile(t *testing.T) {
	repo := &deleteRepoFake{processRepoFake: processRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "doc-1_report.pdf"}}}
	storage := &storageFake{}
	index := &deleteIndexFake{}
	uc := NewDeleteDocumentUseCase(repo, storage, index, nil)

	if err := uc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(index.deleted) != 1 || index.deleted[0] != "doc-1" {
		t.Fatalf("indexed chunks not removed: %#v", index.deleted)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != "doc-1" {
		t.Fatalf("record not removed: %#v", repo.deleted)
	}
	if len(storage.removed) != 1 || storage.removed[0] != "doc-1_report.pdf" {
		t.Fatalf("stored file not removed: %#v", storage.removed)
	}
}

func TestDeleteToleratesStorageFailure(t *testing.T) {
	repo := &deleteRepoFake{processRepoFake: processRepoFake{doc: &domain.Document{ID: "doc-1", StoragePath: "doc-1_report.pdf"}}}
	storage := &storageFake{removeErr: errors.New("permission denied")}
	uc := NewDeleteDocumentUseCase(repo, storage, &deleteIndexFake{}, nil)

	if err := uc.Delete(context.Background(), "doc-1"); err != nil {
		t.Fatalf("leftover file must not fail the delete, got %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("record not removed: %#v", repo.deleted)
	}
}

func TestDeleteStopsOnIndexFailure(t *testing.T) {
	repo := &deleteRepoFake{processRepoFake: processRepoFake{doc: &domain.Document{ID: "doc-1"}}}
	index := &deleteIndexFake{deleteErr: errors.New("qdrant down")}
	uc := NewDeleteDocumentUseCase(repo, &storageFake{}, index, nil)

	if err := uc.Delete(context.Background(), "doc-1"); err == nil {
		t.Fatalf("expected index failure to surface")
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("record must survive when chunk delete fails: %#v", repo.deleted)
	}
}

func TestDeleteMissingDocument(t *testing.T) {
	repo := &deleteRepoFake{processRepoFake: processRepoFake{getErr: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no rows"))}}
	uc := NewDeleteDocumentUseCase(repo, &storageFake{}, &deleteIndexFake{}, nil)

	err := uc.Delete(context.Background(), "ghost")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
