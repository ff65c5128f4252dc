package procure

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
	"github.com/nikhil/procurement-ai-agent/backend/internal/progress"
)

// Planner turns a query into an ordered list of websites to search.
type Planner interface {
	PlanSearches(ctx context.Context, query string) ([]string, error)
}

// ProductSearcher runs one search scoped to a single website.
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query, website string) ([]models.RawProduct, error)
}

// Formatter deduplicates, sorts and summarizes a raw result set.
type Formatter interface {
	FormatResults(ctx context.Context, raw []models.RawProduct, compliance []models.ComplianceResult, query string) (*models.FormattedResults, error)
}

// ImageSearcher finds images for one product on one website.
type ImageSearcher interface {
	SearchImages(ctx context.Context, productName, websiteURL string) (*models.ImageSearchResult, error)
}

// ComplianceChecker judges one product against one reference document.
type ComplianceChecker interface {
	CheckCompliance(ctx context.Context, product models.Product, documentID, indexID string) (*models.ComplianceResult, error)
}

// Capabilities bundles every external capability the manager drives.
// The agents service client satisfies all of them.
type Capabilities interface {
	Planner
	ProductSearcher
	Formatter
	ImageSearcher
	ComplianceChecker
}

// Manager sequences the procurement pipeline: plan, search fan-out,
// format, image enrichment, optional compliance check. One Manager
// serves one request and owns that request's progress board.
type Manager struct {
	caps     Capabilities
	registry *Registry
	printer  *progress.Printer
}

func NewManager(caps Capabilities, registry *Registry, printer *progress.Printer) *Manager {
	return &Manager{caps: caps, registry: registry, printer: printer}
}

// Plan runs the planning stage alone and returns the website list.
// A planner failure aborts the stage.
func (m *Manager) Plan(ctx context.Context, query string) ([]string, error) {
	traceID := uuid.NewString()
	m.printer.UpdateItem("trace_id", "Trace: "+traceID, true, true)

	m.printer.UpdateItem("planning", "Planning search strategy...", false, false)
	websites, err := m.caps.PlanSearches(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("planning: %w", err)
	}
	m.printer.UpdateItem("planning", fmt.Sprintf("Identified %d websites to search", len(websites)), true, false)
	return websites, nil
}

// Run executes the search pipeline against the selected websites and
// returns the aggregate report. A run with zero successful sites still
// returns a valid, empty report.
func (m *Manager) Run(ctx context.Context, query string, websites []string) (*models.SearchReport, error) {
	traceID := uuid.NewString()
	m.printer.UpdateItem("trace_id", "Trace: "+traceID, true, true)
	m.printer.UpdateItem("starting", "Starting procurement search...", true, true)

	raw := m.performSearches(ctx, query, websites)

	formatted, err := m.formatResults(ctx, raw, nil, query)
	if err != nil {
		return nil, err
	}

	products := m.enrichImages(ctx, formatted.Products)

	if len(products) > 0 {
		m.printer.UpdateItem("summary", formatted.Summary, true, true)
		m.printer.UpdateItem("products",
			fmt.Sprintf("Found %d unique products\nPrice range: %s", formatted.TotalProducts, formatted.PriceRange),
			true, true)
		for i, p := range products {
			m.printer.UpdateItem(fmt.Sprintf("product_%d", i+1), productSummary(p), true, true)
		}
	} else {
		m.printer.UpdateItem("products", "No products found", true, false)
	}

	report := &models.SearchReport{
		Query:         query,
		Summary:       formatted.Summary,
		TotalProducts: formatted.TotalProducts,
		PriceRange:    formatted.PriceRange,
		Products:      products,
	}
	m.printer.UpdateItem("final_results", "Search complete", true, false)
	return report, nil
}

// performSearches fans out one search per website and flattens the
// successful batches. A failed site contributes nothing and never aborts
// the run.
func (m *Manager) performSearches(ctx context.Context, query string, websites []string) []models.RawProduct {
	batches := fanOut(ctx, m.printer, "searching", "Searching", websites,
		func(ctx context.Context, website string) ([]models.RawProduct, error) {
			return m.caps.SearchProducts(ctx, query, website)
		})

	var all []models.RawProduct
	for _, b := range batches {
		all = append(all, b...)
	}
	return all
}

// formatResults is the single-shot normalization stage; deduplication
// needs the whole raw set at once, so there is no fan-out here.
func (m *Manager) formatResults(ctx context.Context, raw []models.RawProduct, compliance []models.ComplianceResult, query string) (*models.FormattedResults, error) {
	m.printer.UpdateItem("formatting", "Organizing search results and compliance data...", false, false)
	formatted, err := m.caps.FormatResults(ctx, raw, compliance, query)
	if err != nil {
		return nil, fmt.Errorf("formatting: %w", err)
	}
	m.printer.UpdateItem("formatting", "Results organized", true, false)
	return formatted, nil
}

type enrichUnit struct {
	idx     int
	product models.Product
}

// enrichImages fans out one image search per product. Unlike the search
// stage, a failed unit keeps its record with an empty image list: the
// output always has the same products in the same order as the input.
func (m *Manager) enrichImages(ctx context.Context, products []models.Product) []models.Product {
	units := make([]enrichUnit, len(products))
	for i, p := range products {
		units[i] = enrichUnit{idx: i, product: p}
	}

	enriched := fanOut(ctx, m.printer, "image_search", "Searching for product images", units,
		func(ctx context.Context, u enrichUnit) (enrichUnit, error) {
			res := m.FindProductImages(ctx, u.product.Name, u.product.URL)
			u.product.Images = res.Images
			if len(res.Images) > 0 {
				u.product.ImageURL = res.Images[0].URL
			}
			return u, nil
		})

	out := make([]models.Product, len(products))
	for _, u := range enriched {
		out[u.idx] = u.product
	}
	return out
}

// FindProductImages asks the image-search capability for one product's
// images. It never returns an error: a failed lookup yields an empty
// image list with the error text attached.
func (m *Manager) FindProductImages(ctx context.Context, productName, websiteURL string) *models.ImageSearchResult {
	res, err := m.caps.SearchImages(ctx, productName, websiteURL)
	if err != nil {
		log.Printf("image search for %q on %s: %v", productName, websiteURL, err)
		return &models.ImageSearchResult{
			ProductName: productName,
			Images:      []models.ProductImage{},
			Error:       err.Error(),
		}
	}
	if res.Images == nil {
		res.Images = []models.ProductImage{}
	}
	return res
}

type verdictUnit struct {
	idx     int
	product models.Product
}

// CheckCompliance produces one verdict per product against the given
// reference document. With no active document it returns an empty slice
// without touching the compliance capability. Every product is checked
// against the single process-wide index id.
func (m *Manager) CheckCompliance(ctx context.Context, products []models.Product, documentID string) ([]models.ComplianceResult, error) {
	if documentID == "" {
		return []models.ComplianceResult{}, nil
	}

	indexID, err := m.registry.EnsureIndex(ctx)
	if err != nil {
		return nil, err
	}

	units := make([]verdictUnit, len(products))
	for i, p := range products {
		units[i] = verdictUnit{idx: i, product: p}
	}

	type verdictOut struct {
		idx     int
		verdict models.ComplianceResult
	}
	outs := fanOut(ctx, m.printer, "compliance", "Checking compliance", units,
		func(ctx context.Context, u verdictUnit) (verdictOut, error) {
			v, err := m.caps.CheckCompliance(ctx, u.product, documentID, indexID)
			if err != nil {
				return verdictOut{}, fmt.Errorf("compliance check for %q: %w", u.product.Name, err)
			}
			return verdictOut{idx: u.idx, verdict: *v}, nil
		})

	// restore input order so reports stay stable
	byIdx := make(map[int]models.ComplianceResult, len(outs))
	for _, o := range outs {
		byIdx[o.idx] = o.verdict
	}
	results := make([]models.ComplianceResult, 0, len(outs))
	for i := range products {
		if v, ok := byIdx[i]; ok {
			results = append(results, v)
		}
	}
	m.printer.UpdateItem("compliance", "Compliance check complete", true, false)
	return results, nil
}

// GenerateRFQ builds a request-for-quote for the selected products.
// Quantities are zipped positionally; extra entries on either side are
// ignored.
func (m *Manager) GenerateRFQ(products []models.Product, quantities []int) *models.RFQDocument {
	now := time.Now()
	n := len(products)
	if len(quantities) < n {
		n = len(quantities)
	}
	items := make([]models.RFQItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.RFQItem{Product: products[i], Quantity: quantities[i]})
	}
	return &models.RFQDocument{
		ID:    "RFQ_" + now.Format("20060102_150405"),
		Date:  now,
		Items: items,
		Terms: models.RFQTerms{
			Compliance: "Product must be HIPPA, ISO, GMP Compliant",
			Payment:    "Payment terms will be NET 60",
			Validity:   "All prices must be valid for 30 calendar days from the date of quotation",
		},
	}
}

func productSummary(p models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\nPrice: %s\nWebsite: %s\nURL: %s\n", p.Name, p.Price, p.Website, p.URL)
	if len(p.Images) > 0 {
		b.WriteString("Images found:\n")
		for _, img := range p.Images {
			fmt.Fprintf(&b, "- %s\n", img.URL)
		}
	}
	return b.String()
}
