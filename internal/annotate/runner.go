package annotate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stefan/catalog-agent/internal/types"
)

// Batch defaults match the provider's rate-limit courtesy expectations.
const (
	DefaultBatchSize  = 20
	DefaultBatchDelay = 2 * time.Second
)

// Checkpoint persists the full record set. The runner calls it after every
// completed batch so an interrupted run loses at most one batch of work.
type Checkpoint func(records []types.CatalogRecord) error

// Runner executes one annotator over a catalog in fixed-size concurrent
// batches with an inter-batch pause.
type Runner struct {
	BatchSize  int
	BatchDelay time.Duration
	Verbose    bool
}

// NewRunner returns a Runner with default batch parameters.
func NewRunner() *Runner {
	return &Runner{BatchSize: DefaultBatchSize, BatchDelay: DefaultBatchDelay}
}

// Run annotates every pending record in place, checkpointing after each
// batch. Returns the number of records annotated in this run.
func (r *Runner) Run(ctx context.Context, records []types.CatalogRecord, ann Annotator, checkpoint Checkpoint) (int, error) {
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var pending []int
	for i := range records {
		if ann.Pending(records[i]) {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		if r.Verbose {
			log.Printf("[%s] nothing pending, all %d records already annotated", ann.Name(), len(records))
		}
		return 0, nil
	}

	runID := uuid.New()
	if r.Verbose {
		log.Printf("[%s] run %s: %d of %d records pending, batch size %d",
			ann.Name(), runID, len(pending), len(records), batchSize)
	}

	done := 0
	for start := 0; start < len(pending); start += batchSize {
		end := min(start+batchSize, len(pending))
		batch := pending[start:end]

		values := make([]string, len(batch))
		g, gCtx := errgroup.WithContext(ctx)
		for slot, idx := range batch {
			g.Go(func() error {
				value, err := ann.Annotate(gCtx, records[idx])
				if err != nil {
					return fmt.Errorf("record %s: %w", records[idx].ID, err)
				}
				values[slot] = value
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return done, err
		}

		for slot, idx := range batch {
			ann.Apply(&records[idx], values[slot])
		}
		done += len(batch)

		if checkpoint != nil {
			if err := checkpoint(records); err != nil {
				return done, fmt.Errorf("checkpointing after batch: %w", err)
			}
		}
		if r.Verbose {
			log.Printf("[%s] run %s: %d/%d annotated, progress saved", ann.Name(), runID, done, len(pending))
		}

		if end < len(pending) && r.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return done, ctx.Err()
			case <-time.After(r.BatchDelay):
			}
		}
	}

	return done, nil
}
