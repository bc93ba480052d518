package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/kicker-league/internal/platform/id"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

const DefaultBatchWorkers = 4

// BatchItem is one raw export. Source names where it came from, usually a file path.
type BatchItem struct {
	Source string
	Raw    []byte
}

type BatchItemResult struct {
	Source     string     `json:"source"`
	Result     SyncResult `json:"result"`
	Err        error      `json:"-"`
	Error      string     `json:"error,omitempty"`
	Kind       ErrorKind  `json:"kind"`
	DurationMs int64      `json:"duration_ms"`
}

type BatchReport struct {
	BatchID   string            `json:"batch_id"`
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Conflicts int               `json:"conflicts"`
	Invalid   int               `json:"invalid"`
	Failed    int               `json:"failed"`
}

type syncer interface {
	Sync(ctx context.Context, raw []byte) (SyncResult, error)
}

// BatchImporter imports many exports on a bounded worker pool. A failing
// item never affects the others; imports that touch the same tournament are
// serialized by the sync service itself.
type BatchImporter struct {
	sync    syncer
	workers int
	ids     id.Generator
	logger  *logging.Logger
}

func NewBatchImporter(sync *SyncService, workers int, ids id.Generator, logger *logging.Logger) *BatchImporter {
	return newBatchImporter(sync, workers, ids, logger)
}

func newBatchImporter(s syncer, workers int, ids id.Generator, logger *logging.Logger) *BatchImporter {
	if workers <= 0 {
		workers = DefaultBatchWorkers
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BatchImporter{sync: s, workers: workers, ids: ids, logger: logger.Named("batch")}
}

// SyncMany imports every item and reports per-item outcomes in input order.
func (b *BatchImporter) SyncMany(ctx context.Context, items []BatchItem) (BatchReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BatchImporter.SyncMany")
	defer span.End()

	batchID, err := b.ids.NewID()
	if err != nil {
		return BatchReport{}, fmt.Errorf("generate batch id: %w", err)
	}
	report := BatchReport{BatchID: batchID, Items: make([]BatchItemResult, len(items))}
	if len(items) == 0 {
		return report, nil
	}

	workerCount := min(b.workers, len(items))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BatchReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var succeeded, conflicts, invalid, failed atomic.Int32
	var workers sync.WaitGroup
	for i, item := range items {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BatchItemResult{Source: item.Source}
			row.Result, row.Err = b.sync.Sync(ctx, item.Raw)
			row.Kind = Classify(row.Err)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Kind {
			case KindNone:
				succeeded.Add(1)
			case KindConflict:
				conflicts.Add(1)
			case KindInvalid:
				invalid.Add(1)
			default:
				failed.Add(1)
			}
			if row.Err != nil {
				row.Error = row.Err.Error()
				b.logger.WarnContext(ctx, "batch item failed",
					"batch_id", batchID, "source", item.Source, "kind", string(row.Kind), "error", row.Err)
			}
			report.Items[i] = row
		}); err != nil {
			workers.Done()
			workers.Wait()
			return BatchReport{}, fmt.Errorf("submit import to worker pool: %w", err)
		}
	}
	workers.Wait()

	report.Succeeded = int(succeeded.Load())
	report.Conflicts = int(conflicts.Load())
	report.Invalid = int(invalid.Load())
	report.Failed = int(failed.Load())

	b.logger.InfoContext(ctx, "batch imported",
		"batch_id", batchID,
		"items", len(items),
		"succeeded", report.Succeeded,
		"conflicts", report.Conflicts,
		"invalid", report.Invalid,
		"failed", report.Failed,
	)
	return report, nil
}

// FailedSources lists the sources of failed items, for command line summaries.
func (r BatchReport) FailedSources() []string {
	var out []string
	for _, item := range r.Items {
		if item.Err != nil {
			out = append(out, strings.TrimSpace(item.Source))
		}
	}
	return out
}
