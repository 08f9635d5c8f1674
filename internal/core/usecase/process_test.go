package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dartos/dartos/internal/core/domain"
	"github.com/dartos/dartos/internal/infrastructure/resilience"
)

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type processRepoFake struct {
	doc         *domain.Document
	getErr      error
	saveErr     error
	statusCalls []statusCall
	savedID     string
	savedText   string
}

func (f *processRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *processRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	copyDoc := *f.doc
	return &copyDoc, nil
}

func (f *processRepoFake) List(context.Context) ([]domain.Document, error) { return nil, nil }

func (f *processRepoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return nil
}

func (f *processRepoFake) SaveContent(_ context.Context, id string, content string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedID = id
	f.savedText = content
	return nil
}

func (f *processRepoFake) Count(context.Context) (int, error) { return 0, nil }

func (f *processRepoFake) Delete(context.Context, string) error { return nil }

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type gateFake struct {
	verdict domain.TextVerdict
}

func (f *gateFake) Validate(string) domain.TextVerdict { return f.verdict }

type indexFake struct {
	calls    int
	failures int
	err      error
}

func (f *indexFake) Index(context.Context, string, string) error {
	f.calls++
	if f.err != nil && f.calls <= f.failures {
		return f.err
	}
	if f.err != nil && f.failures == 0 {
		return f.err
	}
	return nil
}

func (f *indexFake) Search(context.Context, string, int) []string { return nil }

func (f *indexFake) Delete(context.Context, string) error { return nil }

func (f *indexFake) Chunks(context.Context, string) ([]string, error) { return nil, nil }

func fastExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 3,
		RetryMultiplier:  1.0,
	})
}

func validGate() *gateFake {
	return &gateFake{verdict: domain.TextVerdict{Valid: true}}
}

func TestProcessByIDIndexedOnSuccess(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	index := &indexFake{}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: "extracted text"}, validGate(), index, fastExecutor(), nil)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected 2 status calls, got %d", len(repo.statusCalls))
	}
	if repo.statusCalls[0].status != domain.StatusProcessing || repo.statusCalls[1].status != domain.StatusIndexed {
		t.Fatalf("unexpected status sequence: %+v", repo.statusCalls)
	}
	if repo.savedID != "doc-1" || repo.savedText != "extracted text" {
		t.Fatalf("expected content saved for doc-1, got %q/%q", repo.savedID, repo.savedText)
	}
	if index.calls != 1 {
		t.Fatalf("expected 1 index call, got %d", index.calls)
	}
}

func TestProcessByIDFailedOnExtractError(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{err: errors.New("corrupt pdf")}, validGate(), &indexFake{}, fastExecutor(), nil)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %+v", last)
	}
	if !strings.HasPrefix(last.errMsg, "extraction failed:") {
		t.Fatalf("unexpected error message: %q", last.errMsg)
	}
}

func TestProcessByIDFailedOnInvalidText(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	index := &indexFake{}
	gate := &gateFake{verdict: domain.TextVerdict{Valid: false, Reason: "no text content"}}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: ""}, gate, index, fastExecutor(), nil)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusFailed || last.errMsg != "validation failed: no text content" {
		t.Fatalf("unexpected terminal state: %+v", last)
	}
	if repo.savedID != "" {
		t.Fatalf("invalid text must not be persisted, saved for %q", repo.savedID)
	}
	if index.calls != 0 {
		t.Fatalf("invalid text must not be indexed, got %d calls", index.calls)
	}
}

func TestProcessByIDIndexedAfterTransientIndexFailures(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	index := &indexFake{err: errors.New("qdrant unavailable"), failures: 2}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: "text"}, validGate(), index, fastExecutor(), nil)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if index.calls != 3 {
		t.Fatalf("expected 3 index attempts, got %d", index.calls)
	}
	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusIndexed {
		t.Fatalf("expected indexed after retries, got %+v", last)
	}
}

func TestProcessByIDProcessedWhenIndexingExhausted(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}}
	index := &indexFake{err: errors.New("qdrant unavailable")}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: "text"}, validGate(), index, fastExecutor(), nil)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if index.calls != 3 {
		t.Fatalf("expected 3 index attempts, got %d", index.calls)
	}
	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusProcessed {
		t.Fatalf("expected processed terminal state, got %+v", last)
	}
	if !strings.HasPrefix(last.errMsg, "indexing failed after retries:") {
		t.Fatalf("unexpected error message: %q", last.errMsg)
	}
	if repo.savedText != "text" {
		t.Fatalf("extracted content must survive indexing failure, got %q", repo.savedText)
	}
}

func TestProcessByIDSwallowsMissingDocument(t *testing.T) {
	repo := &processRepoFake{getErr: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no rows"))}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: "text"}, validGate(), &indexFake{}, fastExecutor(), nil)

	if err := uc.ProcessByID(context.Background(), "ghost"); err != nil {
		t.Fatalf("missing document must not error, got %v", err)
	}
	if len(repo.statusCalls) != 0 {
		t.Fatalf("missing document must not transition, got %+v", repo.statusCalls)
	}
}

// ctxAwareRepoFake refuses writes once the call's context is dead, like the
// real Postgres repository does.
type ctxAwareRepoFake struct {
	processRepoFake
}

func (f *ctxAwareRepoFake) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.processRepoFake.UpdateStatus(ctx, id, status, errMessage)
}

type blockingExtractorFake struct{}

func (blockingExtractorFake) Extract(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestProcessByIDPersistsTerminalStatusAfterJobTimeout(t *testing.T) {
	repo := &ctxAwareRepoFake{processRepoFake: processRepoFake{doc: &domain.Document{ID: "doc-1"}}}
	uc := NewProcessDocumentUseCase(repo, blockingExtractorFake{}, validGate(), &indexFake{}, fastExecutor(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := uc.ProcessByID(ctx, "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	if len(repo.statusCalls) != 2 {
		t.Fatalf("expected processing + terminal status, got %+v", repo.statusCalls)
	}
	last := repo.statusCalls[1]
	if last.status != domain.StatusFailed {
		t.Fatalf("document must not rest in processing after the deadline, got %+v", last)
	}
	if !strings.HasPrefix(last.errMsg, "extraction failed:") {
		t.Fatalf("unexpected error message: %q", last.errMsg)
	}
}

func TestProcessByIDFailedOnSaveContentError(t *testing.T) {
	repo := &processRepoFake{doc: &domain.Document{ID: "doc-1"}, saveErr: errors.New("disk full")}
	index := &indexFake{}
	uc := NewProcessDocumentUseCase(repo, &extractorFake{text: "text"}, validGate(), index, fastExecutor(), nil)

	if err := uc.ProcessByID(context.Background(), "doc-1"); err != nil {
		t.Fatalf("ProcessByID() error = %v", err)
	}
	last := repo.statusCalls[len(repo.statusCalls)-1]
	if last.status != domain.StatusFailed {
		t.Fatalf("expected failed status, got %+v", last)
	}
	if index.calls != 0 {
		t.Fatalf("content save failure must stop before indexing, got %d calls", index.calls)
	}
}
