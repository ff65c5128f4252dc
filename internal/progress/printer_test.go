package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateItemPreservesInsertionOrder(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	p.UpdateItem("first", "one", false, false)
	p.UpdateItem("second", "two", false, false)
	p.UpdateItem("third", "three", false, false)

	// re-updating an existing id must not move it
	p.UpdateItem("first", "one updated", true, false)

	lines := strings.Split(strings.TrimRight(p.Render(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "one updated")
	assert.Contains(t, lines[1], "two")
	assert.Contains(t, lines[2], "three")
}

func TestMarkDoneUnknownIDIsNoop(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	p.UpdateItem("a", "alpha", false, false)
	p.MarkDone("missing")

	assert.NotContains(t, p.Render(), "✓")
}

func TestMarkDoneRendersCheckmark(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	p.UpdateItem("a", "alpha", false, false)
	p.MarkDone("a")

	assert.Contains(t, p.Render(), "✓")
}

func TestHideCheckmarkSuppressesMarker(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{})
	p.UpdateItem("trace", "trace line", true, true)

	out := p.Render()
	assert.Contains(t, out, "trace line")
	assert.NotContains(t, out, "✓")
}

func TestEndIsIdempotentAndStopsUpdates(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.UpdateItem("a", "alpha", false, false)
	p.End()
	p.End()

	before := buf.Len()
	p.UpdateItem("b", "beta", false, false)
	assert.Equal(t, before, buf.Len(), "updates after End must not write")
}

func TestNilWriterIsSafe(t *testing.T) {
	p := NewPrinter(nil)
	p.UpdateItem("a", "alpha", false, false)
	p.End()
}
