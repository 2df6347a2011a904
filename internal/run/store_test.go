package run

import (
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/models"
	"github.com/stretchr/testify/require"
)

func TestStoreTracksPassLifecycle(t *testing.T) {
	store := NewStore()

	id := uuid.NewString()
	pass := store.Start(id, "matrix.csv", "steam-reforming-base", "equilib", 90)
	require.Equal(t, models.BatchRunning, pass.Status)
	require.Equal(t, 90, pass.Total)
	require.Empty(t, pass.Cases)

	store.StartCase(id, Case{Index: 0, CaseID: 1, BiooilID: 2, TemperatureC: 800, PressureBar: 15, SteamToCarbon: 3.5})
	store.CompleteCase(id, 0, 101, models.StatusConverged, "")

	store.StartCase(id, Case{Index: 1, CaseID: 2, BiooilID: 2, TemperatureC: 650, PressureBar: 5, SteamToCarbon: 2})
	store.CompleteCase(id, 1, 102, models.StatusFailed, "solver diverged")

	store.SkipCase(id, "checkpoint")

	snapshot, ok := store.Get(id)
	require.True(t, ok)
	require.Equal(t, 2, snapshot.Completed)
	require.Equal(t, 1, snapshot.Converged)
	require.Equal(t, 1, snapshot.Failed)
	require.Equal(t, 1, snapshot.Skipped)
	require.Len(t, snapshot.Cases, 2)

	first := snapshot.Cases[0]
	require.Equal(t, CaseConverged, first.Status)
	require.Equal(t, int64(101), first.SimulationID)
	require.NotNil(t, first.StartedAt)
	require.NotNil(t, first.CompletedAt)

	second := snapshot.Cases[1]
	require.Equal(t, CaseFailed, second.Status)
	require.Equal(t, "solver diverged", second.Error)

	store.Complete(id, nil)
	snapshot, ok = store.Get(id)
	require.True(t, ok)
	require.Equal(t, models.BatchCompleted, snapshot.Status)
	require.NotNil(t, snapshot.CompletedAt)
}

func TestStoreCompleteWithError(t *testing.T) {
	store := NewStore()

	id := uuid.NewString()
	store.Start(id, "matrix.csv", "steam-reforming-base", "equilib", 45)
	store.Complete(id, errors.New("checkpoint write failed"))

	pass, ok := store.Get(id)
	require.True(t, ok)
	require.Equal(t, models.BatchFailed, pass.Status)
	require.Equal(t, "checkpoint write failed", pass.Error)
}

func TestStoreSnapshotsAreCopies(t *testing.T) {
	store := NewStore()

	id := uuid.NewString()
	store.Start(id, "matrix.csv", "steam-reforming-base", "equilib", 45)
	store.StartCase(id, Case{Index: 0, CaseID: 1, BiooilID: 1})

	snapshot, ok := store.Get(id)
	require.True(t, ok)
	snapshot.Cases[0].Status = CaseFailed
	snapshot.Completed = 99

	fresh, ok := store.Get(id)
	require.True(t, ok)
	require.Equal(t, CaseRunning, fresh.Cases[0].Status)
	require.Zero(t, fresh.Completed)
}

func TestStoreListAndLatestFollowStartOrder(t *testing.T) {
	store := NewStore()
	require.Nil(t, store.Latest())
	require.Empty(t, store.List())

	first := uuid.NewString()
	second := uuid.NewString()
	store.Start(first, "a.csv", "m", "equilib", 1)
	store.Start(second, "b.csv", "m", "equilib", 1)

	passes := store.List()
	require.Len(t, passes, 2)
	require.Equal(t, first, passes[0].ID)
	require.Equal(t, second, passes[1].ID)
	require.Equal(t, second, store.Latest().ID)
}

func TestStoreIgnoresUnknownPass(t *testing.T) {
	store := NewStore()

	store.StartCase("missing", Case{Index: 0})
	store.CompleteCase("missing", 0, 1, models.StatusConverged, "")
	store.SkipCase("missing", "checkpoint")
	store.Complete("missing", nil)

	_, ok := store.Get("missing")
	require.False(t, ok)
}
