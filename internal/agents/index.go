package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

// ---------------------------------------------------------------------------
// IndexClient: calls the vector index service (create, list, attach)
// ---------------------------------------------------------------------------

// IndexClient calls the index service over HTTP. The index backs
// reference-document search for compliance checks.
type IndexClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewIndexClient(baseURL string) *IndexClient {
	return &IndexClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{}}
}

// Create calls POST /api/indices and returns the new index id.
func (c *IndexClient) Create(ctx context.Context, name string) (string, error) {
	body, _ := json.Marshal(map[string]string{"name": name})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/indices", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("index-service /api/indices: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("index-service /api/indices: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "index-service", "/api/indices"); err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("index-service /api/indices: decode: %w", err)
	}
	return result.ID, nil
}

// List calls GET /api/indices and returns the existing indices.
func (c *IndexClient) List(ctx context.Context) ([]models.IndexInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/indices", nil)
	if err != nil {
		return nil, fmt.Errorf("index-service /api/indices: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("index-service /api/indices: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "index-service", "/api/indices"); err != nil {
		return nil, err
	}

	var result struct {
		Indices []models.IndexInfo `json:"indices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("index-service /api/indices: decode: %w", err)
	}
	return result.Indices, nil
}

// Attach calls POST /api/indices/{id}/documents to register a document
// under an index with metadata tags.
func (c *IndexClient) Attach(ctx context.Context, indexID, documentID string, tags map[string]any) error {
	path := fmt.Sprintf("/api/indices/%s/documents", indexID)
	body, _ := json.Marshal(map[string]any{
		"document_id": documentID,
		"tags":        tags,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("index-service %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("index-service %s: %w", path, err)
	}
	defer resp.Body.Close()

	return checkResp(resp, "index-service", path)
}
