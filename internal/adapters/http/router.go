// Package httpadapter exposes the document pipeline over REST. Processing
// failures never surface here as errors: callers poll document status, and
// query responses degrade to explanatory messages.
package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dartos/dartos/internal/core/domain"
	"github.com/dartos/dartos/internal/core/ports"
	"github.com/dartos/dartos/internal/observability/metrics"
)

const contentPreviewLimit = 500

type Router struct {
	uploadUC ports.DocumentUploader
	queryUC  ports.DocumentQueryService
	deleteUC ports.DocumentDeleter
	repo     ports.DocumentReader
	index    ports.VectorIndex
	metrics  *metrics.HTTPServerMetrics

	maxUploadBytes int64
	defaultTopK    int
	rateLimitRPS   float64
	rateLimitBurst int
}

type RouterOptions struct {
	MaxUploadBytes int64
	DefaultTopK    int
	RateLimitRPS   float64
	RateLimitBurst int
	Metrics        *metrics.HTTPServerMetrics
}

func NewRouter(
	uploadUC ports.DocumentUploader,
	queryUC ports.DocumentQueryService,
	deleteUC ports.DocumentDeleter,
	repo ports.DocumentReader,
	index ports.VectorIndex,
	options RouterOptions,
) *Router {
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = 50 * 1024 * 1024
	}
	return &Router{
		uploadUC:       uploadUC,
		queryUC:        queryUC,
		deleteUC:       deleteUC,
		repo:           repo,
		index:          index,
		metrics:        options.Metrics,
		maxUploadBytes: options.MaxUploadBytes,
		defaultTopK:    options.DefaultTopK,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("GET /v1/documents/{id}/status", rt.getDocumentStatus)
	mux.HandleFunc("GET /v1/documents/{id}/chunks", rt.getDocumentChunks)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/query", rt.query)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	handler := http.Handler(mux)
	if rt.rateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = metricsMiddleware(handler, mux, rt.metrics)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

type documentResponse struct {
	ID             string `json:"id"`
	Filename       string `json:"filename"`
	Status         string `json:"status"`
	ContentPreview string `json:"content_preview"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

func toDocumentResponse(doc *domain.Document) documentResponse {
	preview := doc.ContentPreview(contentPreviewLimit)
	if doc.Status == domain.StatusUploaded || doc.Status == domain.StatusProcessing {
		preview = "Processing in progress..."
	}
	return documentResponse{
		ID:             doc.ID,
		Filename:       doc.Filename,
		Status:         string(doc.Status),
		ContentPreview: preview,
		ErrorMessage:   doc.Error,
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	doc, err := rt.uploadUC.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, toDocumentResponse(doc))
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.repo.List(r.Context())
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for i := range docs {
		out = append(out, toDocumentResponse(&docs[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (rt *Router) getDocumentStatus(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":            doc.ID,
		"filename":      doc.Filename,
		"status":        string(doc.Status),
		"progress":      doc.Status.ProgressMessage(),
		"error_message": doc.Error,
	})
}

func (rt *Router) getDocumentChunks(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.loadDocument(w, r)
	if !ok {
		return
	}

	chunks, err := rt.index.Chunks(r.Context(), doc.ID)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	if chunks == nil {
		chunks = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     doc.ID,
		"chunks": chunks,
	})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	if err := rt.deleteUC.Delete(r.Context(), id); err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query        string `json:"query"`
		TopK         int    `json:"top_k"`
		CustomPrompt string `json:"custom_prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = rt.defaultTopK
	}

	result, err := rt.queryUC.Answer(r.Context(), req.Query, req.TopK, req.CustomPrompt)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveQuery(len(result.Chunks))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) loadDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return nil, false
	}

	doc, err := rt.repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return nil, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
