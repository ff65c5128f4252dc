package procure

import (
	"context"
	"fmt"
	"log"

	"github.com/nikhil/procurement-ai-agent/backend/internal/progress"
)

type outcome[R any] struct {
	result R
	err    error
}

// fanIn launches one goroutine per unit and consumes completions as they
// arrive, not in submission order. Failed units are logged and dropped;
// the batch itself never fails, so an all-failed batch yields an empty
// aggregate. The each callback observes every completion with a running
// count, success or not.
func fanIn[U, R any](ctx context.Context, units []U, op func(context.Context, U) (R, error), each func(completed int, result R, err error)) []R {
	ch := make(chan outcome[R], len(units))
	for _, unit := range units {
		go func(u U) {
			r, err := op(ctx, u)
			ch <- outcome[R]{result: r, err: err}
		}(unit)
	}

	results := make([]R, 0, len(units))
	for completed := 1; completed <= len(units); completed++ {
		out := <-ch
		if out.err != nil {
			log.Printf("fan-out unit failed: %v", out.err)
		} else {
			results = append(results, out.result)
		}
		if each != nil {
			each(completed, out.result, out.err)
		}
	}
	return results
}

// fanOut is fanIn with progress reporting on a board item: the item
// counts "<label>... k/N completed" and is marked done once every unit
// has finished.
func fanOut[U, R any](ctx context.Context, printer *progress.Printer, itemID, label string, units []U, op func(context.Context, U) (R, error)) []R {
	printer.UpdateItem(itemID, label+"...", false, false)
	results := fanIn(ctx, units, op, func(completed int, _ R, _ error) {
		printer.UpdateItem(itemID, fmt.Sprintf("%s... %d/%d completed", label, completed, len(units)), false, false)
	})
	printer.MarkDone(itemID)
	return results
}
