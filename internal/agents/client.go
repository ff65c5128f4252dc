package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

// checkResp reads the response body and returns an error if the status is not 2xx.
// On error it includes the upstream body for debugging.
func checkResp(resp *http.Response, service, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s %s returned %d: %s", service, path, resp.StatusCode, string(body))
}

// ---------------------------------------------------------------------------
// Client: calls the agents service (planner, shopping, formatter,
// image search, compliance, market intelligence, chat, inventory parsing)
// ---------------------------------------------------------------------------

// Client calls the agents service over HTTP. Every capability is a single
// POST carrying a structured request and returning a structured reply.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: &http.Client{}}
}

// PlanSearches calls POST /api/plan-searches and returns the ordered
// website list for a query.
func (c *Client) PlanSearches(ctx context.Context, query string) ([]string, error) {
	body, _ := json.Marshal(map[string]string{"query": query})
	resp, err := c.post(ctx, "/api/plan-searches", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/plan-searches"); err != nil {
		return nil, err
	}

	var result struct {
		Websites []string `json:"websites"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("agents-service /api/plan-searches: decode: %w", err)
	}
	return result.Websites, nil
}

// SearchProducts calls POST /api/search-products scoped to one website.
func (c *Client) SearchProducts(ctx context.Context, query, website string) ([]models.RawProduct, error) {
	body, _ := json.Marshal(map[string]string{
		"query": query, "website": website,
	})
	resp, err := c.post(ctx, "/api/search-products", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/search-products"); err != nil {
		return nil, err
	}

	var result struct {
		Products []struct {
			Name  string `json:"name"`
			Price string `json:"price"`
			URL   string `json:"url"`
		} `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("agents-service /api/search-products: decode: %w", err)
	}

	products := make([]models.RawProduct, 0, len(result.Products))
	for _, p := range result.Products {
		products = append(products, models.RawProduct{
			Name: p.Name, Price: p.Price, URL: p.URL, Website: website,
		})
	}
	return products, nil
}

// Summarize calls POST /api/summarize for a short document summary.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	body, _ := json.Marshal(map[string]string{"text": text})
	resp, err := c.post(ctx, "/api/summarize", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/summarize"); err != nil {
		return "", err
	}

	var result struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("agents-service /api/summarize: decode: %w", err)
	}
	return result.Summary, nil
}

// FormatResults calls POST /api/format-results to deduplicate, sort and
// summarize a raw result set. Prior compliance verdicts are passed through
// for context.
func (c *Client) FormatResults(ctx context.Context, raw []models.RawProduct, compliance []models.ComplianceResult, query string) (*models.FormattedResults, error) {
	body, _ := json.Marshal(map[string]any{
		"search_results":     raw,
		"compliance_results": compliance,
		"query":              query,
	})
	resp, err := c.post(ctx, "/api/format-results", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/format-results"); err != nil {
		return nil, err
	}

	var result models.FormattedResults
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("agents-service /api/format-results: decode: %w", err)
	}
	return &result, nil
}

// SearchImages calls POST /api/search-images for one product on one site.
func (c *Client) SearchImages(ctx context.Context, productName, websiteURL string) (*models.ImageSearchResult, error) {
	body, _ := json.Marshal(map[string]string{
		"product_name": productName, "website_url": websiteURL,
	})
	resp, err := c.post(ctx, "/api/search-images", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/search-images"); err != nil {
		return nil, err
	}

	var result models.ImageSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("agents-service /api/search-images: decode: %w", err)
	}
	return &result, nil
}

// CheckCompliance calls POST /api/check-compliance for a single product
// against one reference document in one index.
func (c *Client) CheckCompliance(ctx context.Context, product models.Product, documentID, indexID string) (*models.ComplianceResult, error) {
	body, _ := json.Marshal(map[string]string{
		"product_name": product.Name,
		"price":        product.Price,
		"website":      product.Website,
		"document_id":  documentID,
		"index_id":     indexID,
	})
	resp, err := c.post(ctx, "/api/check-compliance", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/check-compliance"); err != nil {
		return nil, err
	}

	var result models.ComplianceResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("agents-service /api/check-compliance: decode: %w", err)
	}
	result.ProductName = product.Name
	return &result, nil
}

// MarketIntelligence calls POST /api/market-intelligence.
func (c *Client) MarketIntelligence(ctx context.Context, productName, category, manufacturer, price, vendor string) (*models.MarketIntelligence, error) {
	body, _ := json.Marshal(map[string]string{
		"product_name": productName,
		"category":     category,
		"manufacturer": manufacturer,
		"price":        price,
		"vendor":       vendor,
	})
	resp, err := c.post(ctx, "/api/market-intelligence", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/market-intelligence"); err != nil {
		return nil, err
	}

	var result models.MarketIntelligence
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("agents-service /api/market-intelligence: decode: %w", err)
	}
	return &result, nil
}

// PlanChat calls POST /api/chat-plan to turn a chat message into a
// structured action plan.
func (c *Client) PlanChat(ctx context.Context, message string) (*models.ActionPlan, error) {
	body, _ := json.Marshal(map[string]string{"message": message})
	resp, err := c.post(ctx, "/api/chat-plan", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/chat-plan"); err != nil {
		return nil, err
	}

	var result models.ActionPlan
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("agents-service /api/chat-plan: decode: %w", err)
	}
	return &result, nil
}

// ParseInventory calls POST /api/parse-inventory to extract inventory
// items from raw document text (CSV dump, extracted PDF text, etc).
func (c *Client) ParseInventory(ctx context.Context, content string) ([]models.InventoryItem, error) {
	body, _ := json.Marshal(map[string]string{"content": content})
	resp, err := c.post(ctx, "/api/parse-inventory", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResp(resp, "agents-service", "/api/parse-inventory"); err != nil {
		return nil, err
	}

	var result struct {
		Items []models.InventoryItem `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("agents-service /api/parse-inventory: decode: %w", err)
	}
	return result.Items, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agents-service %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agents-service %s: %w", path, err)
	}
	return resp, nil
}
