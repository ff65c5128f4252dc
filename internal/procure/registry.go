package procure

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

// IndexName is the fixed logical name of the compliance search index.
// Exactly one index with this name exists per deployment.
const IndexName = "compliance_store"

const (
	binaryPlaceholder   = "[Binary file detected - summary not available]"
	encodingPlaceholder = "[File encoding not supported - summary not available]"
	summaryPlaceholder  = "[Summary not available]"

	summaryMaxChars = 2000
)

// ErrDocumentNotFound is returned when the document store has no content
// for the requested id.
var ErrDocumentNotFound = errors.New("reference document not found")

// DocumentStore is the external store holding reference-document content.
type DocumentStore interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
	GetContent(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]models.StoredDocument, error)
}

// Index is the external search index backing compliance lookups.
type Index interface {
	Create(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]models.IndexInfo, error)
	Attach(ctx context.Context, indexID, documentID string, tags map[string]any) error
}

// Summarizer produces a short summary of document text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// ActivePointer is the per-caller slot holding the active reference
// document id. It is owned by the request layer; the registry only reads
// and clears it.
type ActivePointer interface {
	ActiveDocumentID(ctx context.Context) (string, error)
	ClearActiveDocument(ctx context.Context, id string) error
}

type docMeta struct {
	uploadedAt time.Time
	summary    string
}

// Registry manages the lifecycle of uploaded reference documents and the
// index they are searched through. It is process-wide: the index id and
// the {uploadedAt, summary} metadata cache live for the process lifetime
// and are best-effort after a restart.
type Registry struct {
	store      DocumentStore
	index      Index
	summarizer Summarizer

	mu      sync.Mutex
	indexID string
	meta    map[string]docMeta
}

func NewRegistry(store DocumentStore, index Index, summarizer Summarizer) *Registry {
	return &Registry{
		store:      store,
		index:      index,
		summarizer: summarizer,
		meta:       make(map[string]docMeta),
	}
}

// Upload persists a reference document, generates its summary, and
// registers it under the compliance index. A failed summarization
// degrades to a placeholder summary; it never loses the upload.
func (r *Registry) Upload(ctx context.Context, filename string, data []byte, uploadedAt time.Time) (string, error) {
	summary := r.summarize(ctx, data)

	id, err := r.store.Upload(ctx, filename, data)
	if err != nil {
		return "", fmt.Errorf("document store upload: %w", err)
	}

	r.mu.Lock()
	r.meta[id] = docMeta{uploadedAt: uploadedAt, summary: summary}
	r.mu.Unlock()

	indexID, err := r.EnsureIndex(ctx)
	if err != nil {
		return "", err
	}
	tags := map[string]any{
		"type":        "compliance",
		"uploaded_at": uploadedAt.Unix(),
		"summary":     summary,
	}
	if err := r.index.Attach(ctx, indexID, id, tags); err != nil {
		return "", fmt.Errorf("index attach: %w", err)
	}
	return id, nil
}

// summarize classifies the content and asks the summarization capability
// for a short summary of the first 2000 characters. Binary and
// undecodable content get fixed placeholders without any external call.
func (r *Registry) summarize(ctx context.Context, data []byte) string {
	if isBinary(data) {
		return binaryPlaceholder
	}
	if !utf8.Valid(data) {
		return encodingPlaceholder
	}
	text := string(data)
	if len(text) > summaryMaxChars {
		text = text[:summaryMaxChars]
	}
	summary, err := r.summarizer.Summarize(ctx, text)
	if err != nil {
		log.Printf("document summary failed: %v", err)
		return summaryPlaceholder
	}
	return summary
}

// List merges the store's document listing with the locally cached
// metadata. Documents the cache has never seen get the current time as
// uploadedAt so every entry stays orderable.
func (r *Registry) List(ctx context.Context) ([]models.ReferenceDocument, error) {
	stored, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("document store list: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	docs := make([]models.ReferenceDocument, 0, len(stored))
	for _, s := range stored {
		doc := models.ReferenceDocument{ID: s.ID, Filename: s.Filename, UploadedAt: s.UploadedAt}
		if m, ok := r.meta[s.ID]; ok {
			doc.UploadedAt = m.uploadedAt
			doc.Summary = m.summary
		}
		if doc.UploadedAt.IsZero() {
			doc.UploadedAt = time.Now()
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// GetContent fetches the raw text of a stored document.
func (r *Registry) GetContent(ctx context.Context, id string) (string, error) {
	return r.store.GetContent(ctx, id)
}

// Delete removes a document from the store. The local cache and a
// matching active pointer are purged regardless of the store outcome;
// the return value is the store's own confirmation.
func (r *Registry) Delete(ctx context.Context, id string, active ActivePointer) (bool, error) {
	deleted, err := r.store.Delete(ctx, id)

	r.mu.Lock()
	delete(r.meta, id)
	r.mu.Unlock()

	if active != nil {
		if cur, perr := active.ActiveDocumentID(ctx); perr == nil && cur == id {
			if cerr := active.ClearActiveDocument(ctx, id); cerr != nil {
				log.Printf("clear active document %s: %v", id, cerr)
			}
		}
	}

	if err != nil {
		return false, fmt.Errorf("document store delete: %w", err)
	}
	return deleted, nil
}

// EnsureIndex returns the compliance index id, creating the index on
// first use. The id is cached for the process lifetime and the whole
// lookup-or-create runs under the registry lock, so concurrent first
// callers cannot create a second index.
func (r *Registry) EnsureIndex(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexID != "" {
		return r.indexID, nil
	}

	existing, err := r.index.List(ctx)
	if err != nil {
		return "", fmt.Errorf("index list: %w", err)
	}
	for _, idx := range existing {
		if idx.Name == IndexName {
			r.indexID = idx.ID
			return r.indexID, nil
		}
	}

	id, err := r.index.Create(ctx, IndexName)
	if err != nil {
		return "", fmt.Errorf("index create: %w", err)
	}
	r.indexID = id
	return id, nil
}

// isBinary reports whether the first 1KB of content looks like a binary
// file: a NUL byte anywhere in the sample, or more than 30% of sample
// bytes outside the printable ASCII range.
func isBinary(data []byte) bool {
	sample := data
	if len(sample) > 1024 {
		sample = sample[:1024]
	}
	if len(sample) == 0 {
		return false
	}
	nonPrintable := 0
	for _, b := range sample {
		if b == 0 {
			return true
		}
		if b < 32 || b > 126 {
			nonPrintable++
		}
	}
	return nonPrintable*10 > len(sample)*3
}
