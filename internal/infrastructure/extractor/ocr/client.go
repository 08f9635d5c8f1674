// Package ocr is a client for a tesseract-style OCR sidecar service.
package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dartos/dartos/internal/core/ports"
)

type Client struct {
	baseURL    string
	storage    ports.ObjectStorage
	httpClient *http.Client
}

func New(baseURL string, storage ports.ObjectStorage) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		storage: storage,
		// OCR over a multi-page scan is slow.
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *Client) Extract(ctx context.Context, storagePath string) (string, error) {
	file, err := c.storage.Open(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer file.Close()

	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)
	go func() {
		part, err := form.CreateFormFile("file", filepath.Base(storagePath))
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.CloseWithError(form.Close())
	}()

	url := c.baseURL + "/api/v1/ocr"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pipeReader)
	if err != nil {
		return "", fmt.Errorf("create ocr request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return "", fmt.Errorf("ocr status: %s: %s", resp.Status, msg)
		}
		return "", fmt.Errorf("ocr status: %s", resp.Status)
	}

	var ocrResp struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ocrResp); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	return ocrResp.Text, nil
}
