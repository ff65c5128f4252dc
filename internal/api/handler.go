package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
	"github.com/nikhil/procurement-ai-agent/backend/internal/procure"
	"github.com/nikhil/procurement-ai-agent/backend/internal/progress"
	"github.com/nikhil/procurement-ai-agent/backend/internal/session"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Agents bundles every external capability the request layer needs.
type Agents interface {
	procure.Capabilities
	MarketIntelligence(ctx context.Context, productName, category, manufacturer, price, vendor string) (*models.MarketIntelligence, error)
	PlanChat(ctx context.Context, message string) (*models.ActionPlan, error)
	ParseInventory(ctx context.Context, content string) ([]models.InventoryItem, error)
}

// OrderStore defines the interface for purchase-order persistence.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) (string, error)
	List(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
}

// InventoryStore defines the interface for inventory persistence.
type InventoryStore interface {
	List(ctx context.Context) ([]models.InventoryItem, error)
	GetByID(ctx context.Context, id string) (*models.InventoryItem, error)
	Add(ctx context.Context, it *models.InventoryItem) (*models.InventoryItem, error)
	Update(ctx context.Context, itemCode string, it *models.InventoryItem) error
	Delete(ctx context.Context, itemCode string) error
	Upsert(ctx context.Context, items []models.InventoryItem) error
}

// Handler holds all procurement HTTP handlers.
type Handler struct {
	agents         Agents
	registry       *procure.Registry
	sessions       *session.Store
	orders         OrderStore
	inventory      InventoryStore
	progressOut    io.Writer
	maxUploadBytes int64
}

func NewHandler(agents Agents, registry *procure.Registry, sessions *session.Store, orders OrderStore, inventory InventoryStore, progressOut io.Writer, maxUploadBytes int64) *Handler {
	return &Handler{
		agents:         agents,
		registry:       registry,
		sessions:       sessions,
		orders:         orders,
		inventory:      inventory,
		progressOut:    progressOut,
		maxUploadBytes: maxUploadBytes,
	}
}

// newManager builds a per-request pipeline manager with its own progress
// board. Callers must End the returned printer on every exit path.
func (h *Handler) newManager() (*procure.Manager, *progress.Printer) {
	printer := progress.NewPrinter(h.progressOut)
	return procure.NewManager(h.agents, h.registry, printer), printer
}

// sessionID returns the caller's session id, minting a cookie when none
// exists yet. Sessions are anonymous; they only carry the active
// compliance document.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(session.Cookie); err == nil && c.Value != "" {
		return c.Value
	}
	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     session.Cookie,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(session.TTL.Seconds()),
		HttpOnly: true,
	})
	return sid
}

// PlanSearch runs the planning stage and returns the website list.
func (h *Handler) PlanSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "No query provided")
		return
	}

	mgr, printer := h.newManager()
	defer printer.End()

	websites, err := mgr.Plan(r.Context(), req.Query)
	if err != nil {
		log.Printf("plan_search error: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"websites": websites})
}

// RunSearch runs the full pipeline with the user-selected websites.
func (h *Handler) RunSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query    string   `json:"query"`
		Websites []string `json:"websites"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" || req.Websites == nil {
		writeError(w, http.StatusBadRequest, "Missing query or websites")
		return
	}

	mgr, printer := h.newManager()
	defer printer.End()

	report, err := mgr.Run(r.Context(), req.Query, req.Websites)
	if err != nil {
		log.Printf("run_search error: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// StreamSearch runs the pipeline and streams events over SSE until the
// terminal complete event.
func (h *Handler) StreamSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query    string   `json:"query"`
		Websites []string `json:"websites"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" || req.Websites == nil {
		writeError(w, http.StatusBadRequest, "Missing query or websites")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sid := h.sessionID(w, r)
	docID, err := h.sessions.ActiveDocument(r.Context(), sid)
	if err != nil {
		log.Printf("session read error: %v", err)
	}

	mgr, printer := h.newManager()
	defer printer.End()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for ev := range mgr.RunStreamed(r.Context(), req.Query, req.Websites, docID) {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Printf("stream marshal error: %v", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

// CheckCompliance checks the posted products against the session's
// active compliance document.
func (h *Handler) CheckCompliance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Products []models.Product `json:"products"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Products) == 0 {
		writeError(w, http.StatusBadRequest, "No products provided")
		return
	}

	sid := h.sessionID(w, r)
	docID, err := h.sessions.ActiveDocument(r.Context(), sid)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session error")
		return
	}
	if docID == "" {
		writeError(w, http.StatusBadRequest, "No compliance file uploaded")
		return
	}

	mgr, printer := h.newManager()
	defer printer.End()

	results, err := mgr.CheckCompliance(r.Context(), req.Products, docID)
	if err != nil {
		log.Printf("check_compliance error: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"compliance_results": results,
	})
}

// SearchImages finds images for a single product on a single website.
func (h *Handler) SearchImages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductName string `json:"product_name"`
		WebsiteURL  string `json:"website_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductName == "" || req.WebsiteURL == "" {
		writeError(w, http.StatusBadRequest, "Product name and website URL are required")
		return
	}

	mgr, printer := h.newManager()
	defer printer.End()

	result := mgr.FindProductImages(r.Context(), req.ProductName, req.WebsiteURL)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "result": result})
}

// MarketIntelligence returns market analysis for one product.
func (h *Handler) MarketIntelligence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductName  string `json:"product_name"`
		Category     string `json:"category"`
		Manufacturer string `json:"manufacturer"`
		Price        string `json:"price"`
		Vendor       string `json:"vendor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "Product name is required")
		return
	}

	intel, err := h.agents.MarketIntelligence(r.Context(), req.ProductName, req.Category, req.Manufacturer, req.Price, req.Vendor)
	if err != nil {
		log.Printf("market_intelligence error: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, intel)
}

// ChatPlan turns a chat message into a structured action plan.
func (h *Handler) ChatPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}

	plan, err := h.agents.PlanChat(r.Context(), req.Message)
	if err != nil {
		log.Printf("chat plan error: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "plan": plan})
}

// ChatExecute runs a previously created action plan.
func (h *Handler) ChatExecute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Plan *models.ActionPlan `json:"plan"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Plan == nil {
		writeError(w, http.StatusBadRequest, "No plan provided")
		return
	}

	switch req.Plan.ActionType {
	case "price_check", "product_search":
		mgr, printer := h.newManager()
		defer printer.End()

		report, err := mgr.Run(r.Context(), req.Plan.Query, req.Plan.Websites)
		if err != nil {
			log.Printf("chat execute error: %v", err)
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "results": report})
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported action type: %s", req.Plan.ActionType))
	}
}

// SendRFQ generates an RFQ for the selected products and simulates
// sending it to the given vendor emails.
func (h *Handler) SendRFQ(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Products   []models.Product `json:"products"`
		Quantities []int            `json:"quantities"`
		Emails     []string         `json:"emails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Products) == 0 || len(req.Emails) == 0 {
		writeError(w, http.StatusBadRequest, "Missing required data")
		return
	}

	mgr, printer := h.newManager()
	defer printer.End()

	rfq := mgr.GenerateRFQ(req.Products, req.Quantities)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("RFQ %s sent to %d vendors", rfq.ID, len(req.Emails)),
		"sent_to": req.Emails,
		"rfq":     rfq,
	})
}
