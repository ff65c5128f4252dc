package procure

import (
	"context"
	"fmt"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

// Stream event types. Every stream ends with exactly one EventComplete.
const (
	EventAgentUpdate      = "agent_update"
	EventSearchProgress   = "search_progress"
	EventSearchResults    = "search_results"
	EventMessage          = "message"
	EventFormattedResults = "formatted_results"
	EventComplianceCheck  = "compliance_check"
	EventError            = "error"
	EventComplete         = "complete"
)

// StreamEvent is one tagged event in a streamed run. Only the fields
// relevant to the event type are populated.
type StreamEvent struct {
	Type       string                    `json:"type"`
	Agent      string                    `json:"agent,omitempty"`
	Status     string                    `json:"status,omitempty"`
	Website    string                    `json:"website,omitempty"`
	Completed  int                       `json:"completed,omitempty"`
	Total      int                       `json:"total,omitempty"`
	Content    string                    `json:"content,omitempty"`
	Products   []models.RawProduct       `json:"products,omitempty"`
	Report     *models.SearchReport      `json:"report,omitempty"`
	Compliance []models.ComplianceResult `json:"compliance_results,omitempty"`
}

type siteResult struct {
	website  string
	products []models.RawProduct
}

// RunStreamed runs the same pipeline as Run but delivers discrete events
// as they become available instead of one aggregate reply. The returned
// channel is closed after the terminal complete event; a stream cannot
// be restarted.
func (m *Manager) RunStreamed(ctx context.Context, query string, websites []string, activeDocID string) <-chan StreamEvent {
	ch := make(chan StreamEvent, 16)

	go func() {
		defer close(ch)
		defer func() {
			ch <- StreamEvent{Type: EventComplete}
		}()

		ch <- StreamEvent{Type: EventAgentUpdate, Agent: "shopping_agent"}

		total := len(websites)
		batches := fanIn(ctx, websites,
			func(ctx context.Context, website string) (siteResult, error) {
				products, err := m.caps.SearchProducts(ctx, query, website)
				if err != nil {
					return siteResult{website: website}, fmt.Errorf("search %s: %w", website, err)
				}
				return siteResult{website: website, products: products}, nil
			},
			func(completed int, result siteResult, err error) {
				ch <- StreamEvent{
					Type: EventSearchProgress, Status: "searching",
					Website: result.website, Completed: completed, Total: total,
				}
				if err == nil && len(result.products) > 0 {
					ch <- StreamEvent{Type: EventSearchResults, Products: result.products}
				}
			})

		var raw []models.RawProduct
		for _, b := range batches {
			raw = append(raw, b.products...)
		}
		ch <- StreamEvent{
			Type:    EventMessage,
			Content: fmt.Sprintf("Found %d raw results across %d websites", len(raw), total),
		}

		ch <- StreamEvent{Type: EventAgentUpdate, Agent: "formatter_agent"}
		formatted, err := m.formatResults(ctx, raw, nil, query)
		if err != nil {
			ch <- StreamEvent{Type: EventError, Content: err.Error()}
			return
		}

		ch <- StreamEvent{Type: EventAgentUpdate, Agent: "image_search_agent"}
		products := m.enrichImages(ctx, formatted.Products)

		ch <- StreamEvent{
			Type: EventFormattedResults,
			Report: &models.SearchReport{
				Query:         query,
				Summary:       formatted.Summary,
				TotalProducts: formatted.TotalProducts,
				PriceRange:    formatted.PriceRange,
				Products:      products,
			},
		}

		if activeDocID != "" {
			ch <- StreamEvent{Type: EventComplianceCheck, Status: "started"}
			verdicts, err := m.CheckCompliance(ctx, products, activeDocID)
			if err != nil {
				ch <- StreamEvent{Type: EventError, Content: err.Error()}
				return
			}
			ch <- StreamEvent{Type: EventComplianceCheck, Status: "completed", Compliance: verdicts}
		}
	}()

	return ch
}
