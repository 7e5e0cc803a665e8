package sync

import (
	"time"

	"shopassist/internal/logger"
	"shopassist/internal/models"
)

// ContentSource is the read side of the store's own content database.
// An unavailable content subsystem yields empty results, not errors.
type ContentSource interface {
	Page(contentType string, limit, offset int) []models.ContentItem
	All(contentType string) []models.ContentItem
	Orders(limit int) []models.OrderSummary
	CountPublished(contentType string) int
}

// Sender is the outbound side of the Messenger the orchestrator needs.
type Sender interface {
	Send(endpoint string, payload map[string]interface{}) (map[string]interface{}, error)
	CheckKey() bool
}

// ProgressStore persists the sync checkpoint and the operator's settings.
type ProgressStore interface {
	LoadProgress() *models.SyncProgress
	SaveProgress(p *models.SyncProgress) error
	ClearProgress() error
	SetLastSync(t time.Time) error
	ContentTypes() []string
}

// StepScheduler is what the orchestrator needs from the Scheduler.
type StepScheduler interface {
	ScheduleNext(delay time.Duration) error
	InitTypeCounters(p *models.SyncProgress)
	AdvanceType(p *models.SyncProgress) error
}

// Orchestrator drives the background sync state machine. Each Step call does
// exactly one bounded unit of work and hands the rest to the scheduler, so a
// crash between steps loses at most one in-flight batch.
type Orchestrator struct {
	batcher     ContentSource
	messenger   Sender
	progress    ProgressStore
	scheduler   StepScheduler
	storeInfo   models.StoreInfo
	batchSize   int
	ordersLimit int
	logger      *logger.Logger
	now         func() time.Time
}

func NewOrchestrator(
	batcher ContentSource,
	messenger Sender,
	progress ProgressStore,
	scheduler StepScheduler,
	storeInfo models.StoreInfo,
	batchSize int,
	ordersLimit int,
	log *logger.Logger,
) *Orchestrator {
	if batchSize <= 0 {
		batchSize = models.DefaultBatchSize
	}
	if ordersLimit <= 0 {
		ordersLimit = models.DefaultBatchSize
	}
	return &Orchestrator{
		batcher:     batcher,
		messenger:   messenger,
		progress:    progress,
		scheduler:   scheduler,
		storeInfo:   storeInfo,
		batchSize:   batchSize,
		ordersLimit: ordersLimit,
		logger:      log,
		now:         time.Now,
	}
}

// Step performs one bounded unit of background sync work.
func (o *Orchestrator) Step() error {
	if !o.messenger.CheckKey() {
		return ErrMissingKey
	}

	p := o.progress.LoadProgress()
	if p == nil {
		p = models.NewSyncProgress(o.batchSize)
	}

	switch p.Step {
	case models.StepStart:
		o.sendStoreInfo()
		return o.initContentSync(p)
	case models.StepContent:
		return o.stepContent(p)
	case models.StepOrders:
		return o.stepOrders(p)
	}
	return nil
}

func (o *Orchestrator) sendStoreInfo() {
	_, err := o.messenger.Send("/store/sync", map[string]interface{}{
		"store_url":  o.storeInfo.URL,
		"store_info": o.storeInfo,
	})
	if err != nil {
		o.logger.Error("store info sync failed: %v", err)
	}
}

func (o *Orchestrator) initContentSync(p *models.SyncProgress) error {
	types := o.progress.ContentTypes()
	p.Step = models.StepContent
	p.ContentTypeQueue = types
	p.OverallProcessed = 0
	p.OverallTotal = 0

	for _, t := range types {
		p.OverallTotal += o.batcher.CountPublished(t)
	}

	if len(p.ContentTypeQueue) > 0 {
		p.CurrentContentType = p.ContentTypeQueue[0]
		p.ContentTypeQueue = p.ContentTypeQueue[1:]
		o.scheduler.InitTypeCounters(p)
	}

	if err := o.progress.SaveProgress(p); err != nil {
		return err
	}
	return o.scheduler.ScheduleNext(AdvanceDelay)
}

func (o *Orchestrator) stepContent(p *models.SyncProgress) error {
	items := o.batcher.Page(p.CurrentContentType, p.BatchSize, p.CurrentProcessed)
	if len(items) == 0 {
		// Type exhausted, even if counters say otherwise.
		return o.scheduler.AdvanceType(p)
	}

	resp, err := o.messenger.Send("/store/sync", map[string]interface{}{
		"store_url":                      o.storeInfo.URL,
		payloadKey(p.CurrentContentType): items,
	})
	if err != nil || !isSuccess(resp) {
		// Counters stay put so the next tick retries this offset. The remote
		// API upserts, so a duplicate on partial failure is harmless.
		o.logger.Error("content batch push failed for %s at offset %d: %v", p.CurrentContentType, p.CurrentProcessed, err)
		return o.scheduler.ScheduleNext(BatchDelay)
	}

	p.CurrentProcessed += len(items)
	p.OverallProcessed += len(items)
	if err := o.progress.SaveProgress(p); err != nil {
		return err
	}

	if p.CurrentProcessed < p.CurrentTotal {
		return o.scheduler.ScheduleNext(BatchDelay)
	}
	return o.scheduler.AdvanceType(p)
}

func (o *Orchestrator) stepOrders(p *models.SyncProgress) error {
	orders := o.batcher.Orders(o.ordersLimit)
	if len(orders) > 0 {
		_, err := o.messenger.Send("/store/sync", map[string]interface{}{
			"store_url": o.storeInfo.URL,
			"orders":    orders,
		})
		if err != nil {
			o.logger.Error("orders sync failed: %v", err)
		}
	}
	return o.completeSync()
}

func (o *Orchestrator) completeSync() error {
	if err := o.progress.ClearProgress(); err != nil {
		return err
	}
	if err := o.progress.SetLastSync(o.now()); err != nil {
		return err
	}
	o.logger.Info("background sync completed")
	return nil
}

// SyncAll runs the legacy synchronous full sync: everything aggregated into
// one payload and sent in a single call. Clears any stale background
// progress so the two paths never disagree about sync state.
func (o *Orchestrator) SyncAll() (map[string]interface{}, error) {
	if !o.messenger.CheckKey() {
		return nil, ErrMissingKey
	}

	payload := map[string]interface{}{
		"store_url":  o.storeInfo.URL,
		"store_info": o.storeInfo,
	}

	for _, t := range o.progress.ContentTypes() {
		items := o.batcher.All(t)
		if len(items) > 0 {
			payload[payloadKey(t)] = items
		}
	}

	if orders := o.batcher.Orders(o.ordersLimit); len(orders) > 0 {
		payload["orders"] = orders
	}

	resp, err := o.messenger.Send("/store/sync", payload)
	if err != nil {
		return nil, err
	}
	if isSuccess(resp) {
		if err := o.progress.SetLastSync(o.now()); err != nil {
			return resp, err
		}
		if err := o.progress.ClearProgress(); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// NotifyDelete tells the assistant API a content item is gone.
// Fire-and-forget: a failed notification is logged, not retried.
func (o *Orchestrator) NotifyDelete(contentID uint, contentType string) {
	_, err := o.messenger.Send("/content/delete", map[string]interface{}{
		"store_url":    o.storeInfo.URL,
		"content_id":   contentID,
		"content_type": contentType,
	})
	if err != nil {
		o.logger.Error("content delete notification failed for %s %d: %v", contentType, contentID, err)
	}
}

// payloadKey maps a content type to its plural payload field, e.g. product
// batches go under "products".
func payloadKey(contentType string) string {
	return contentType + "s"
}

func isSuccess(resp map[string]interface{}) bool {
	ok, _ := resp["success"].(bool)
	return ok
}
