package procure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/procurement-ai-agent/backend/internal/progress"
)

func TestFanInMixedSuccessAndFailure(t *testing.T) {
	units := []int{1, 2, 3, 4, 5}
	results := fanIn(context.Background(), units,
		func(_ context.Context, n int) (int, error) {
			if n%2 == 0 {
				return 0, errors.New("even units fail")
			}
			return n * 10, nil
		}, nil)

	sort.Ints(results)
	assert.Equal(t, []int{10, 30, 50}, results)
}

func TestFanInAllFailedYieldsEmptyAggregate(t *testing.T) {
	units := []string{"a", "b", "c"}
	results := fanIn(context.Background(), units,
		func(_ context.Context, _ string) (string, error) {
			return "", errors.New("boom")
		}, nil)

	assert.Empty(t, results)
}

func TestFanInCallbackSeesEveryCompletion(t *testing.T) {
	units := []int{1, 2, 3, 4}
	var counts []int
	fanIn(context.Background(), units,
		func(_ context.Context, n int) (int, error) {
			if n == 2 {
				return 0, errors.New("fail")
			}
			return n, nil
		},
		func(completed int, _ int, _ error) {
			counts = append(counts, completed)
		})

	// one callback per unit, with a monotonically increasing count
	require.Equal(t, []int{1, 2, 3, 4}, counts)
}

func TestFanOutEmitsProgressTrailAndMarksDone(t *testing.T) {
	var buf bytes.Buffer
	printer := progress.NewPrinter(&buf)

	results := fanOut(context.Background(), printer, "searching", "Searching",
		[]string{"a.example", "b.example"},
		func(_ context.Context, site string) (string, error) {
			if site == "b.example" {
				return "", fmt.Errorf("search %s: unreachable", site)
			}
			return site, nil
		})

	assert.Equal(t, []string{"a.example"}, results)
	out := buf.String()
	assert.Contains(t, out, "Searching... 1/2 completed")
	assert.Contains(t, out, "Searching... 2/2 completed")
	assert.Contains(t, printer.Render(), "✓")
}

func TestFanOutZeroUnits(t *testing.T) {
	printer := progress.NewPrinter(&bytes.Buffer{})
	results := fanOut(context.Background(), printer, "searching", "Searching",
		[]string{},
		func(_ context.Context, _ string) (int, error) { return 0, nil })

	assert.Empty(t, results)
	assert.Contains(t, printer.Render(), "✓")
}
