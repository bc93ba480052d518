package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/kicker-league/internal/domain/tournament"
	"github.com/riskibarqy/kicker-league/internal/platform/id"
	"github.com/riskibarqy/kicker-league/internal/platform/logging"
)

func rawPayload(t *testing.T, externalID, name string) []byte {
	t.Helper()
	p := cupPayload()
	p.ID = externalID
	p.Name = name
	raw, err := sonic.Marshal(p)
	require.NoError(t, err)
	return raw
}

func TestBatchImporter_SyncManyIsolatesFailures(t *testing.T) {
	t.Parallel()

	svc, store := newTestSync(t)
	importer := NewBatchImporter(svc, 3, id.NewSequence("batch"), logging.NewNop())

	items := []BatchItem{
		{Source: "a.json", Raw: rawPayload(t, "cup-a", "Cup A")},
		{Source: "broken.json", Raw: []byte(`{"_id": "cup-x"`)},
		{Source: "b.json", Raw: rawPayload(t, "cup-b", "Cup B")},
		{Source: "nameless.json", Raw: rawPayload(t, "cup-c", "")},
		{Source: "a-again.json", Raw: rawPayload(t, "cup-a", "Cup A")},
	}
	report, err := importer.SyncMany(context.Background(), items)
	require.NoError(t, err)

	require.Equal(t, "batch-1", report.BatchID)
	require.Len(t, report.Items, len(items))
	for i, item := range items {
		require.Equal(t, item.Source, report.Items[i].Source)
	}
	require.Equal(t, 3, report.Succeeded)
	require.Equal(t, 2, report.Invalid)
	require.Zero(t, report.Failed)
	require.ElementsMatch(t, []string{"broken.json", "nameless.json"}, report.FailedSources())

	details, err := store.ListDetails(context.Background(), tournament.ListFilter{})
	require.NoError(t, err)
	require.Len(t, details, 2)
}

type stubSyncer struct {
	calls atomic.Int32
	err   error
}

func (s *stubSyncer) Sync(context.Context, []byte) (SyncResult, error) {
	s.calls.Add(1)
	return SyncResult{}, s.err
}

func TestBatchImporter_CountsConflictsAndFailures(t *testing.T) {
	t.Parallel()

	conflict := &stubSyncer{err: crerr.Mark(errors.New("duplicate"), ErrConflict)}
	report, err := newBatchImporter(conflict, 2, nil, nil).SyncMany(context.Background(), []BatchItem{{Source: "x"}, {Source: "y"}})
	require.NoError(t, err)
	require.Equal(t, 2, report.Conflicts)
	require.Equal(t, KindConflict, report.Items[0].Kind)
	require.Equal(t, int32(2), conflict.calls.Load())

	broken := &stubSyncer{err: errors.New("disk on fire")}
	report, err = newBatchImporter(broken, 0, nil, nil).SyncMany(context.Background(), []BatchItem{{Source: "z"}})
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, "disk on fire", report.Items[0].Error)
}

func TestBatchImporter_EmptyBatch(t *testing.T) {
	t.Parallel()

	report, err := newBatchImporter(&stubSyncer{}, 2, id.NewSequence("batch"), nil).SyncMany(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, report.Items)
	require.Equal(t, "batch-1", report.BatchID)
}
