package sync

import (
	"time"

	"github.com/google/uuid"

	"shopassist/internal/logger"
	"shopassist/internal/models"
)

// Step delays. Immediate gets a short grace period so the admin UI can show
// the scheduled state before work starts.
const (
	ImmediateDelay = 5 * time.Second
	AdvanceDelay   = 2 * time.Second
	BatchDelay     = 3 * time.Second
)

// Trigger is one background-sync step request. The worker drops triggers
// whose RunID no longer matches the persisted run, which is how a new
// "sync now" invalidates anything still pending from an earlier run.
type Trigger struct {
	RunID     string    `json:"run_id"`
	NotBefore time.Time `json:"not_before"`
}

// TriggerPublisher arranges a future orchestrator step. Kafka in production,
// a recorder in tests.
type TriggerPublisher interface {
	Publish(t Trigger) error
}

// RunStore persists the active run id alongside sync progress.
type RunStore interface {
	ProgressStore
	SyncRunID() string
	SetSyncRunID(id string) error
}

// Scheduler owns every "when does the next unit of work run" decision and
// the content-type queue progression, so the orchestrator stays a pure
// step function.
type Scheduler struct {
	publisher TriggerPublisher
	store     RunStore
	source    ContentSource
	logger    *logger.Logger
	now       func() time.Time
}

func NewScheduler(publisher TriggerPublisher, store RunStore, source ContentSource, log *logger.Logger) *Scheduler {
	return &Scheduler{
		publisher: publisher,
		store:     store,
		source:    source,
		logger:    log,
		now:       time.Now,
	}
}

// ScheduleImmediate starts a fresh run. Rotating the run id invalidates any
// trigger still pending from a previous run.
func (s *Scheduler) ScheduleImmediate() error {
	runID := uuid.New().String()
	if err := s.store.SetSyncRunID(runID); err != nil {
		return err
	}
	s.logger.Info("scheduled immediate background sync, run %s", runID)
	return s.publisher.Publish(Trigger{
		RunID:     runID,
		NotBefore: s.now().Add(ImmediateDelay),
	})
}

// ScheduleNext arranges the next step of the current run after a delay.
func (s *Scheduler) ScheduleNext(delay time.Duration) error {
	return s.publisher.Publish(Trigger{
		RunID:     s.store.SyncRunID(),
		NotBefore: s.now().Add(delay),
	})
}

// InitTypeCounters fills the per-type counters for whichever content type is
// now current.
func (s *Scheduler) InitTypeCounters(p *models.SyncProgress) {
	p.CurrentTotal = s.source.CountPublished(p.CurrentContentType)
	p.CurrentProcessed = 0
}

// AdvanceType pops the next queued content type, or moves the run to the
// orders step when the queue is empty. Progress is persisted before the next
// step is scheduled.
func (s *Scheduler) AdvanceType(p *models.SyncProgress) error {
	if len(p.ContentTypeQueue) > 0 {
		p.CurrentContentType = p.ContentTypeQueue[0]
		p.ContentTypeQueue = p.ContentTypeQueue[1:]
		s.InitTypeCounters(p)
	} else {
		p.Step = models.StepOrders
	}
	if err := s.store.SaveProgress(p); err != nil {
		return err
	}
	return s.ScheduleNext(AdvanceDelay)
}
