package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopassist/internal/logger"
	"shopassist/internal/models"
)

func newTestScheduler(st *memStore, source *fakeSource) (*Scheduler, *fakePublisher) {
	pub := &fakePublisher{}
	s := NewScheduler(pub, st, source, logger.New("error"))
	s.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return s, pub
}

func TestScheduleImmediateRotatesRun(t *testing.T) {
	st := &memStore{runID: "old-run"}
	s, pub := newTestScheduler(st, &fakeSource{})

	require.NoError(t, s.ScheduleImmediate())

	require.Len(t, pub.triggers, 1)
	assert.NotEqual(t, "old-run", st.runID)
	assert.Equal(t, st.runID, pub.triggers[0].RunID)
	assert.Equal(t, ImmediateDelay, pub.triggers[0].NotBefore.Sub(s.now()))
}

func TestScheduleNextKeepsRun(t *testing.T) {
	st := &memStore{runID: "run-1"}
	s, pub := newTestScheduler(st, &fakeSource{})

	require.NoError(t, s.ScheduleNext(BatchDelay))

	require.Len(t, pub.triggers, 1)
	assert.Equal(t, "run-1", pub.triggers[0].RunID)
	assert.Equal(t, BatchDelay, pub.triggers[0].NotBefore.Sub(s.now()))
}

func TestInitTypeCounters(t *testing.T) {
	source := &fakeSource{items: map[string][]models.ContentItem{"post": make([]models.ContentItem, 7)}}
	s, _ := newTestScheduler(&memStore{}, source)

	p := models.NewSyncProgress(50)
	p.CurrentContentType = "post"
	p.CurrentProcessed = 12

	s.InitTypeCounters(p)

	assert.Equal(t, 7, p.CurrentTotal)
	assert.Equal(t, 0, p.CurrentProcessed)
}

func TestAdvanceTypePopsQueue(t *testing.T) {
	source := &fakeSource{items: map[string][]models.ContentItem{"page": make([]models.ContentItem, 4)}}
	st := &memStore{}
	s, pub := newTestScheduler(st, source)

	p := models.NewSyncProgress(50)
	p.Step = models.StepContent
	p.CurrentContentType = "post"
	p.ContentTypeQueue = []string{"page"}

	require.NoError(t, s.AdvanceType(p))

	assert.Equal(t, "page", p.CurrentContentType)
	assert.Empty(t, p.ContentTypeQueue)
	assert.Equal(t, 4, p.CurrentTotal)
	assert.Equal(t, models.StepContent, p.Step)

	// Persist first, then schedule.
	require.NotNil(t, st.progress)
	assert.Equal(t, "page", st.progress.CurrentContentType)
	assert.Len(t, pub.triggers, 1)
}

func TestAdvanceTypeEmptyQueueMovesToOrders(t *testing.T) {
	st := &memStore{}
	s, pub := newTestScheduler(st, &fakeSource{})

	p := models.NewSyncProgress(50)
	p.Step = models.StepContent
	p.CurrentContentType = "post"

	require.NoError(t, s.AdvanceType(p))

	assert.Equal(t, models.StepOrders, p.Step)
	assert.Equal(t, models.StepOrders, st.progress.Step)
	assert.Len(t, pub.triggers, 1)
}
