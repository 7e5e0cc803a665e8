package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"shopassist/internal/config"
	"shopassist/internal/logger"
	"shopassist/internal/store"
	syncer "shopassist/internal/sync"
)

// Worker consumes sync-step triggers and runs one orchestrator step per
// trigger. Single consumer group, so steps never overlap across processes;
// the options-store lease guards the rest.
type Worker struct {
	config       *config.Config
	logger       *logger.Logger
	reader       *kafka.Reader
	orchestrator *syncer.Orchestrator
	scheduler    *syncer.Scheduler
	options      *store.Options
}

func New(cfg *config.Config, log *logger.Logger, orch *syncer.Orchestrator, sched *syncer.Scheduler, opts *store.Options) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "shopassist-worker",
		Topic:          cfg.SyncTopic,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:       cfg,
		logger:       log,
		reader:       reader,
		orchestrator: orch,
		scheduler:    sched,
		options:      opts,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for sync triggers...")

	for {
		message, err := w.reader.ReadMessage(context.Background())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		var trigger syncer.Trigger
		if err := json.Unmarshal(message.Value, &trigger); err != nil {
			w.logger.Error("Failed to parse trigger: %v", err)
			continue
		}

		w.handle(trigger)
	}
}

func (w *Worker) handle(trigger syncer.Trigger) {
	// Triggers from a superseded run are dead: a new "sync now" rotated the
	// run id to invalidate them.
	if trigger.RunID != w.options.SyncRunID() {
		w.logger.Debug("Dropping stale trigger for run %s", trigger.RunID)
		return
	}

	if wait := time.Until(trigger.NotBefore); wait > 0 {
		time.Sleep(wait)
	}

	if err := w.options.AcquireSyncLock(time.Now()); err != nil {
		if errors.Is(err, store.ErrLocked) {
			w.logger.Debug("Sync step already running, rescheduling")
			if err := w.scheduler.ScheduleNext(syncer.AdvanceDelay); err != nil {
				w.logger.Error("Failed to reschedule step: %v", err)
			}
			return
		}
		w.logger.Error("Failed to acquire sync lock: %v", err)
		return
	}
	defer func() {
		if err := w.options.ReleaseSyncLock(); err != nil {
			w.logger.Error("Failed to release sync lock: %v", err)
		}
	}()

	if err := w.orchestrator.Step(); err != nil {
		w.logger.Error("Sync step failed: %v", err)
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
