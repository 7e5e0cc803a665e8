package store

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shopassist/internal/models"
)

// Option keys. These are the only persisted settings the sync and chat
// subsystems read or write.
const (
	KeyAPIKey       = "api_key"
	KeyEnabled      = "chat_enabled"
	KeyContentTypes = "content_types"
	KeySyncProgress = "sync_progress"
	KeyLastSync     = "last_sync"
	KeySyncRunID    = "sync_run_id"
	KeySyncLock     = "sync_lock"
	KeyDebug        = "debug"
)

// Options is the store-wide key-value settings table. It owns durability for
// the API key and the sync progress checkpoint.
type Options struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Options {
	return &Options{db: db}
}

func (o *Options) Get(key string) (string, bool) {
	var opt models.Option
	if err := o.db.First(&opt, "option_key = ?", key).Error; err != nil {
		return "", false
	}
	return opt.Value, true
}

func (o *Options) Set(key, value string) error {
	opt := models.Option{Key: key, Value: value}
	return o.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "option_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"option_value", "updated_at"}),
	}).Create(&opt).Error
}

func (o *Options) Delete(key string) error {
	return o.db.Delete(&models.Option{}, "option_key = ?", key).Error
}

func (o *Options) APIKey() string {
	v, _ := o.Get(KeyAPIKey)
	return v
}

func (o *Options) Enabled() bool {
	v, ok := o.Get(KeyEnabled)
	if !ok {
		return true
	}
	return v == "1"
}

func (o *Options) Debug() bool {
	v, _ := o.Get(KeyDebug)
	return v == "1"
}

// ContentTypes returns the operator-selected content types to sync.
// Defaults to products only.
func (o *Options) ContentTypes() []string {
	v, ok := o.Get(KeyContentTypes)
	if !ok || v == "" {
		return []string{models.ContentTypeProduct}
	}
	var types []string
	if err := json.Unmarshal([]byte(v), &types); err != nil || len(types) == 0 {
		return []string{models.ContentTypeProduct}
	}
	return types
}

func (o *Options) SetContentTypes(types []string) error {
	raw, err := json.Marshal(types)
	if err != nil {
		return err
	}
	return o.Set(KeyContentTypes, string(raw))
}

// LoadProgress returns the persisted sync checkpoint, or nil when no sync is
// in progress. Malformed data is normalized, never returned raw.
func (o *Options) LoadProgress() *models.SyncProgress {
	v, ok := o.Get(KeySyncProgress)
	if !ok || v == "" {
		return nil
	}
	var p models.SyncProgress
	if err := json.Unmarshal([]byte(v), &p); err != nil {
		return nil
	}
	p.Normalize()
	return &p
}

func (o *Options) SaveProgress(p *models.SyncProgress) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return o.Set(KeySyncProgress, string(raw))
}

func (o *Options) ClearProgress() error {
	return o.Delete(KeySyncProgress)
}

func (o *Options) LastSync() string {
	v, ok := o.Get(KeyLastSync)
	if !ok || v == "" {
		return "Never"
	}
	return v
}

func (o *Options) SetLastSync(t time.Time) error {
	return o.Set(KeyLastSync, t.UTC().Format("2006-01-02 15:04:05"))
}

func (o *Options) SyncRunID() string {
	v, _ := o.Get(KeySyncRunID)
	return v
}

func (o *Options) SetSyncRunID(id string) error {
	return o.Set(KeySyncRunID, id)
}

type syncLock struct {
	AcquiredAt time.Time `json:"acquired_at"`
}

// lockTimeout bounds how long a crashed worker can hold the sync lock.
const lockTimeout = 5 * time.Minute

var ErrLocked = errors.New("sync already running")

// AcquireSyncLock takes the single-flight lease for one orchestrator step.
// A stale lease past its timeout is stolen.
func (o *Options) AcquireSyncLock(now time.Time) error {
	if v, ok := o.Get(KeySyncLock); ok && v != "" {
		var l syncLock
		if err := json.Unmarshal([]byte(v), &l); err == nil {
			if now.Sub(l.AcquiredAt) < lockTimeout {
				return ErrLocked
			}
		}
	}
	raw, err := json.Marshal(syncLock{AcquiredAt: now})
	if err != nil {
		return err
	}
	return o.Set(KeySyncLock, string(raw))
}

func (o *Options) ReleaseSyncLock() error {
	return o.Delete(KeySyncLock)
}
