package procure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/procurement-ai-agent/backend/internal/models"
)

type fakeDocStore struct {
	mu        sync.Mutex
	docs      map[string]string
	filenames map[string]string
	seq       int
	uploadErr error
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{docs: make(map[string]string), filenames: make(map[string]string)}
}

func (s *fakeDocStore) Upload(_ context.Context, filename string, data []byte) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("file-%d", s.seq)
	s.docs[id] = string(data)
	s.filenames[id] = filename
	return id, nil
}

func (s *fakeDocStore) GetContent(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.docs[id]
	if !ok {
		return "", ErrDocumentNotFound
	}
	return content, nil
}

func (s *fakeDocStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[id]
	delete(s.docs, id)
	delete(s.filenames, id)
	return ok, nil
}

func (s *fakeDocStore) List(_ context.Context) ([]models.StoredDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var docs []models.StoredDocument
	for id := range s.docs {
		docs = append(docs, models.StoredDocument{ID: id, Filename: s.filenames[id]})
	}
	return docs, nil
}

type fakeIndex struct {
	mu       sync.Mutex
	created  int
	indices  []models.IndexInfo
	attached map[string][]string // index id to attached document ids
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{attached: make(map[string][]string)}
}

func (i *fakeIndex) Create(_ context.Context, name string) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.created++
	id := fmt.Sprintf("idx-%d", i.created)
	i.indices = append(i.indices, models.IndexInfo{ID: id, Name: name})
	return id, nil
}

func (i *fakeIndex) List(_ context.Context) ([]models.IndexInfo, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]models.IndexInfo(nil), i.indices...), nil
}

func (i *fakeIndex) Attach(_ context.Context, indexID, documentID string, _ map[string]any) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.attached[indexID] = append(i.attached[indexID], documentID)
	return nil
}

type fakeSummarizer struct {
	mu    sync.Mutex
	calls int
	out   string
	err   error
}

func (s *fakeSummarizer) Summarize(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.out, s.err
}

type fakePointer struct {
	id      string
	cleared bool
}

func (p *fakePointer) ActiveDocumentID(_ context.Context) (string, error) { return p.id, nil }
func (p *fakePointer) ClearActiveDocument(_ context.Context, _ string) error {
	p.cleared = true
	p.id = ""
	return nil
}

func newTestRegistry() (*Registry, *fakeDocStore, *fakeIndex, *fakeSummarizer) {
	docs := newFakeDocStore()
	index := newFakeIndex()
	sum := &fakeSummarizer{out: "a short summary"}
	return NewRegistry(docs, index, sum), docs, index, sum
}

func TestUploadTextDocument(t *testing.T) {
	r, _, index, sum := newTestRegistry()

	id, err := r.Upload(context.Background(), "rules.txt", []byte("gloves must be nitrile"), time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, sum.calls)
	assert.Equal(t, []string{id}, index.attached["idx-1"])

	docs, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a short summary", docs[0].Summary)
	assert.Equal(t, "rules.txt", docs[0].Filename)
}

func TestUploadBinaryContentSkipsSummarizer(t *testing.T) {
	r, _, _, sum := newTestRegistry()

	data := append([]byte("PDF"), 0x00, 0x01, 0x02)
	id, err := r.Upload(context.Background(), "doc.pdf", data, time.Now())
	require.NoError(t, err)

	assert.Zero(t, sum.calls, "binary content must never reach the summarizer")

	docs, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Contains(t, docs[0].Summary, "Binary file detected")
}

func TestUploadSummarizerFailureKeepsDocument(t *testing.T) {
	r, docs, _, sum := newTestRegistry()
	sum.err = errors.New("model overloaded")

	id, err := r.Upload(context.Background(), "rules.txt", []byte("plain text"), time.Now())
	require.NoError(t, err)

	content, err := docs.GetContent(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "plain text", content)

	listed, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Contains(t, listed[0].Summary, "Summary not available")
}

func TestUploadStoreFailurePropagates(t *testing.T) {
	r, docs, _, _ := newTestRegistry()
	docs.uploadErr = errors.New("store unreachable")

	_, err := r.Upload(context.Background(), "rules.txt", []byte("text"), time.Now())
	assert.Error(t, err)
}

func TestDeleteClearsMatchingPointerOnly(t *testing.T) {
	r, _, _, _ := newTestRegistry()
	ctx := context.Background()

	id, err := r.Upload(ctx, "rules.txt", []byte("text"), time.Now())
	require.NoError(t, err)

	other := &fakePointer{id: "some-other-doc"}
	deleted, err := r.Delete(ctx, id, other)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, other.cleared, "pointer to a different document must stay")

	id2, err := r.Upload(ctx, "rules2.txt", []byte("text"), time.Now())
	require.NoError(t, err)
	active := &fakePointer{id: id2}
	deleted, err = r.Delete(ctx, id2, active)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, active.cleared)
}

func TestDeleteThenGetContentFails(t *testing.T) {
	r, _, _, _ := newTestRegistry()
	ctx := context.Background()

	id, err := r.Upload(ctx, "rules.txt", []byte("text"), time.Now())
	require.NoError(t, err)

	_, err = r.Delete(ctx, id, nil)
	require.NoError(t, err)

	listed, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = r.GetContent(ctx, id)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestEnsureIndexCreatesOnceUnderConcurrency(t *testing.T) {
	r, _, index, _ := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.EnsureIndex(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, index.created)
}

func TestEnsureIndexReusesExisting(t *testing.T) {
	r, _, index, _ := newTestRegistry()
	index.indices = []models.IndexInfo{{ID: "idx-existing", Name: IndexName}}

	id, err := r.EnsureIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "idx-existing", id)
	assert.Zero(t, index.created)
}

func TestListDefaultsUploadedAt(t *testing.T) {
	r, docs, _, _ := newTestRegistry()
	// simulate a document uploaded by a previous process: present in the
	// store, absent from the local cache
	docs.docs["file-old"] = "old content"
	docs.filenames["file-old"] = "old.txt"

	listed, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.WithinDuration(t, time.Now(), listed[0].UploadedAt, time.Minute)
}

func TestIsBinary(t *testing.T) {
	assert.False(t, isBinary([]byte("plain ascii text")))
	assert.False(t, isBinary(nil))
	assert.True(t, isBinary([]byte{'a', 0x00, 'b'}))

	// >30% of the sample outside printable ASCII
	mostlyHigh := bytes.Repeat([]byte{0xFF, 'a', 'b'}, 100)
	assert.True(t, isBinary(mostlyHigh))
}
