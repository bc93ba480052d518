package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kicker-league/internal/domain/export"
	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

type ResyncInput struct {
	// Year narrows the rows to re-apply; zero means every year.
	Year       int
	MaxWorkers int
	// DryRun re-normalizes and validates the stored payloads without writing.
	DryRun bool
}

type ResyncResult struct {
	TournamentCount int                `json:"tournament_count"`
	SuccessCount    int                `json:"success_count"`
	FailedCount     int                `json:"failed_count"`
	SkippedCount    int                `json:"skipped_count"`
	WorkerCount     int                `json:"worker_count"`
	Tasks           []ResyncTaskResult `json:"tasks"`
}

type ResyncTaskResult struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
	Matches    int    `json:"matches"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

const (
	resyncStatusSuccess = "success"
	resyncStatusFailed  = "failed"
	resyncStatusSkipped = "skipped"
)

type payloadSyncer interface {
	SyncPayload(ctx context.Context, payload export.Payload) (SyncResult, error)
}

// ResyncService re-applies the raw payload stored with each tournament, so
// rows follow normalizer changes without re-fetching the exports.
type ResyncService struct {
	reader tournament.Reader
	sync   payloadSyncer
	logger *logging.Logger
}

func NewResyncService(reader tournament.Reader, sync *SyncService, logger *logging.Logger) *ResyncService {
	return newResyncService(reader, sync, logger)
}

func newResyncService(reader tournament.Reader, sync payloadSyncer, logger *logging.Logger) *ResyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResyncService{reader: reader, sync: sync, logger: logger.Named("resync")}
}

func (s *ResyncService) Resync(ctx context.Context, input ResyncInput) (ResyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResyncService.Resync",
		attribute.Int("season.year", input.Year),
		attribute.Bool("resync.dry_run", input.DryRun),
	)
	defer span.End()

	if input.Year < 0 {
		return ResyncResult{}, fmt.Errorf("%w: year must be >= 0", ErrInvalidInput)
	}

	details, err := s.reader.ListDetails(ctx, tournament.ListFilter{Year: input.Year})
	if err != nil {
		recordSpanError(span, err)
		return ResyncResult{}, fmt.Errorf("list tournaments: %w", err)
	}

	workerCount := normalizeResyncWorkerCount(input.MaxWorkers, len(details))
	result := ResyncResult{
		TournamentCount: len(details),
		WorkerCount:     workerCount,
		Tasks:           make([]ResyncTaskResult, 0, len(details)),
	}
	if len(details) == 0 {
		return result, nil
	}

	results := make(chan ResyncTaskResult, len(details))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ResyncResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, d := range details {
		t := d.Tournament
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := s.resyncOne(ctx, t, input.DryRun)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case resyncStatusSuccess:
				successCount.Add(1)
			case resyncStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "resync tournament failed", "tournament_external_id", t.ExternalID, "error", row.Message)
			}

			results <- row
		}); err != nil {
			workers.Done()
			workers.Wait()
			return ResyncResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].ExternalID < result.Tasks[j].ExternalID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())

	s.logger.InfoContext(ctx, "resync finished",
		"tournaments", result.TournamentCount,
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
		"dry_run", input.DryRun,
	)
	return result, nil
}

func (s *ResyncService) resyncOne(ctx context.Context, t tournament.Tournament, dryRun bool) ResyncTaskResult {
	row := ResyncTaskResult{ExternalID: t.ExternalID}

	stored, err := export.DecodePayload(t.RawPayload)
	if err != nil {
		row.Status = resyncStatusFailed
		row.Message = err.Error()
		return row
	}
	if stored.ID == "" {
		row.Status = resyncStatusSkipped
		row.Message = "no stored payload"
		return row
	}

	payload := export.Normalize(export.Document{Shape: export.ShapeCanonical, Canonical: stored})
	if stored.Version != 0 {
		payload.Version = stored.Version
	}

	if dryRun {
		if err := export.Validate(payload); err != nil {
			row.Status = resyncStatusFailed
			row.Message = err.Error()
			return row
		}
		for _, ref := range payload.Matches() {
			if ref.Match.Eligible() {
				row.Matches++
			}
		}
		row.Status = resyncStatusSuccess
		return row
	}

	res, err := s.sync.SyncPayload(ctx, payload)
	if err != nil {
		row.Status = resyncStatusFailed
		row.Message = err.Error()
		return row
	}
	row.Matches = res.MatchesUpserted
	row.Status = resyncStatusSuccess
	return row
}

func normalizeResyncWorkerCount(requested, tasks int) int {
	if requested <= 0 {
		requested = DefaultBatchWorkers
	}
	if tasks > 0 && requested > tasks {
		requested = tasks
	}
	return max(requested, 1)
}
