package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/database"
	"github.com/TobiSchelling/BriefStudio/internal/results"
)

func newTracker(t *testing.T) *Tracker {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tr := New(results.NewLocal(db))
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tr.now = func() time.Time {
		now = now.Add(10 * time.Second)
		return now
	}
	return tr
}

func attempt(score int, purpose string, n int) brief.GenerationAttempt {
	return brief.GenerationAttempt{
		ImageURL: "https://img/" + string(rune('a'+n)) + ".png",
		Prompt:   "p",
		Params:   brief.GenerationParams{Samples: 1},
		Score:    score,
		Metadata: brief.AttemptMetadata{Purpose: purpose, Attempt: n},
	}
}

func TestSessionLifecycle(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Start(ctx, "acme-1"))
	require.NoError(t, tr.RecordAttempt(ctx, "acme-1", attempt(72, "social", 1)))
	require.NoError(t, tr.RecordAttempt(ctx, "acme-1", attempt(88, "social", 2)))
	require.NoError(t, tr.RecordAttempt(ctx, "acme-1", attempt(80, "social", 3)))
	require.NoError(t, tr.Complete(ctx, "acme-1", true))

	s, err := tr.Session(ctx, "acme-1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, brief.SessionCompleted, s.Status)
	assert.Equal(t, 3, s.TotalAttempts)
	assert.Equal(t, 88, s.BestScore)
	assert.Equal(t, "https://img/c.png", s.BestImageURL)
	require.Len(t, s.History, 3)
	assert.Equal(t, "acme-1", s.History[0].BriefID)
	assert.NotNil(t, s.EndTime)
}

func TestCompleteFailed(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx, "s"))
	require.NoError(t, tr.Complete(ctx, "s", false))

	s, err := tr.Session(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, brief.SessionFailed, s.Status)
}

func TestRecordWithoutSession(t *testing.T) {
	tr := newTracker(t)
	err := tr.RecordAttempt(context.Background(), "missing", attempt(90, "social", 1))
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = tr.Stats(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStats(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Start(ctx, "s"))
	require.NoError(t, tr.RecordAttempt(ctx, "s", attempt(70, "social", 1)))
	require.NoError(t, tr.RecordAttempt(ctx, "s", attempt(90, "social", 2)))
	require.NoError(t, tr.Complete(ctx, "s", true))

	st, err := tr.Stats(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalAttempts)
	assert.InDelta(t, 80, st.AverageScore, 0.001)
	assert.Equal(t, 90, st.BestScore)
	assert.InDelta(t, 50, st.SuccessRate, 0.001)
	// start, two attempts, completion: three clock ticks after the start
	assert.Equal(t, 30*time.Second, st.TimeSpent)
}

func TestStatsEmptySession(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.Start(ctx, "s"))

	st, err := tr.Stats(ctx, "s")
	require.NoError(t, err)
	assert.Zero(t, st.AverageScore)
	assert.Zero(t, st.SuccessRate)
}

func TestLastSuccessful(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Start(ctx, "s"))
	require.NoError(t, tr.RecordAttempt(ctx, "s", attempt(80, "social", 1)))
	require.NoError(t, tr.RecordAttempt(ctx, "s", attempt(95, "product", 2)))
	require.NoError(t, tr.RecordAttempt(ctx, "s", attempt(86, "social", 3)))

	best, err := tr.LastSuccessful(ctx, "s", "social")
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 86, best.Score)

	none, err := tr.LastSuccessful(ctx, "s", "lifestyle")
	require.NoError(t, err)
	assert.Nil(t, none)

	missing, err := tr.LastSuccessful(ctx, "nope", "social")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestResume(t *testing.T) {
	tr := newTracker(t)
	ctx := context.Background()

	st, err := tr.Resume(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, st.CanResume)
	assert.Zero(t, st.RemainingAttempts)

	require.NoError(t, tr.Start(ctx, "s"))
	require.NoError(t, tr.RecordAttempt(ctx, "s", attempt(60, "social", 1)))
	require.NoError(t, tr.RecordAttempt(ctx, "s", attempt(65, "social", 2)))

	st, err = tr.Resume(ctx, "s")
	require.NoError(t, err)
	assert.True(t, st.CanResume)
	assert.Equal(t, 8, st.RemainingAttempts)
	require.NotNil(t, st.LastAttempt)
	assert.Equal(t, 2, st.LastAttempt.Metadata.Attempt)

	require.NoError(t, tr.Complete(ctx, "s", false))
	st, err = tr.Resume(ctx, "s")
	require.NoError(t, err)
	assert.False(t, st.CanResume)
}

func TestSessionsStayOutOfRunListing(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()
	store := results.NewLocal(db)
	tr := New(store)

	require.NoError(t, tr.Start(context.Background(), "acme-1"))
	list, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
