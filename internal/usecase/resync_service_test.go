package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/kicker-league/internal/domain/export"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

type countingPayloadSyncer struct {
	calls atomic.Int32
	err   error
}

func (c *countingPayloadSyncer) SyncPayload(context.Context, export.Payload) (SyncResult, error) {
	c.calls.Add(1)
	return SyncResult{}, c.err
}

func TestResyncService_ReappliesStoredPayloads(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)
	before := persisted(t, store, "cup-1")

	resync := NewResyncService(store, svc, logging.NewNop())
	res, err := resync.Resync(context.Background(), ResyncInput{MaxWorkers: 8})
	require.NoError(t, err)

	require.Equal(t, 1, res.TournamentCount)
	require.Equal(t, 1, res.WorkerCount)
	require.Equal(t, 1, res.SuccessCount)
	require.Len(t, res.Tasks, 1)
	require.Equal(t, "cup-1", res.Tasks[0].ExternalID)
	require.Equal(t, before, persisted(t, store, "cup-1"))

	dry, err := resync.Resync(context.Background(), ResyncInput{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, res.Tasks[0].Matches, dry.Tasks[0].Matches)
}

func TestResyncService_DryRunNeverWrites(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)

	stub := &countingPayloadSyncer{}
	res, err := newResyncService(store, stub, nil).Resync(context.Background(), ResyncInput{DryRun: true})
	require.NoError(t, err)
	require.Equal(t, 1, res.SuccessCount)
	require.Zero(t, stub.calls.Load())
}

func TestResyncService_ReportsFailuresPerTournament(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)

	stub := &countingPayloadSyncer{err: errors.New("db down")}
	res, err := newResyncService(store, stub, nil).Resync(context.Background(), ResyncInput{})
	require.NoError(t, err)
	require.Equal(t, 1, res.FailedCount)
	require.Equal(t, "db down", res.Tasks[0].Message)
}

func TestResyncService_FiltersByYear(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	_, err := svc.SyncPayload(context.Background(), cupPayload())
	require.NoError(t, err)

	stub := &countingPayloadSyncer{}
	res, err := newResyncService(store, stub, nil).Resync(context.Background(), ResyncInput{Year: 1999})
	require.NoError(t, err)
	require.Zero(t, res.TournamentCount)
	require.Zero(t, stub.calls.Load())

	_, err = newResyncService(store, stub, nil).Resync(context.Background(), ResyncInput{Year: -1})
	require.ErrorIs(t, err, ErrInvalidInput)
}
