package handlers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shopassist/internal/logger"
	"shopassist/internal/models"
)

type fakeSyncService struct {
	syncAllResp map[string]interface{}
	syncAllErr  error
	deleted     []string
}

func (f *fakeSyncService) SyncAll() (map[string]interface{}, error) {
	return f.syncAllResp, f.syncAllErr
}

func (f *fakeSyncService) NotifyDelete(contentID uint, contentType string) {
	f.deleted = append(f.deleted, contentType)
}

type fakeValidator struct {
	ok      bool
	message string
}

func (f *fakeValidator) ValidateConnection() (bool, string) { return f.ok, f.message }

type fakeImmediate struct {
	calls int
	err   error
}

func (f *fakeImmediate) ScheduleImmediate() error {
	f.calls++
	return f.err
}

type fakeProgress struct {
	progress *models.SyncProgress
	lastSync string
}

func (f *fakeProgress) LoadProgress() *models.SyncProgress { return f.progress }

func (f *fakeProgress) LastSync() string { return f.lastSync }

func newSyncRouter(t *testing.T, svc *fakeSyncService, v *fakeValidator, sched *fakeImmediate, p *fakeProgress) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Post{}))

	h := NewSyncHandler(db, svc, v, sched, p, logger.New("error"))
	r := gin.New()
	r.POST("/sync/now", h.SyncNow)
	r.POST("/sync/full", h.SyncFull)
	r.GET("/sync/progress", h.Progress)
	r.GET("/sync/connection", h.Connection)
	r.DELETE("/content/:type/:id", h.DeleteContent)
	return r, db
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSyncNowSchedules(t *testing.T) {
	sched := &fakeImmediate{}
	r, _ := newSyncRouter(t, &fakeSyncService{}, &fakeValidator{ok: true}, sched, &fakeProgress{})

	w := do(r, http.MethodPost, "/sync/now")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Background sync scheduled successfully")
	assert.Equal(t, 1, sched.calls)
}

func TestSyncNowConnectionGate(t *testing.T) {
	sched := &fakeImmediate{}
	r, _ := newSyncRouter(t, &fakeSyncService{}, &fakeValidator{ok: false, message: "unknown store"}, sched, &fakeProgress{})

	w := do(r, http.MethodPost, "/sync/now")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Connection validation failed: unknown store")
	assert.Zero(t, sched.calls)
}

func TestProgressEndpoint(t *testing.T) {
	p := models.NewSyncProgress(50)
	p.Step = models.StepContent
	p.CurrentContentType = "product"
	r, _ := newSyncRouter(t, &fakeSyncService{}, &fakeValidator{}, &fakeImmediate{}, &fakeProgress{progress: p, lastSync: "Never"})

	w := do(r, http.MethodGet, "/sync/progress")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"step":"content"`)
	assert.Contains(t, w.Body.String(), `"last_sync":"Never"`)
}

func TestProgressEndpointIdle(t *testing.T) {
	r, _ := newSyncRouter(t, &fakeSyncService{}, &fakeValidator{}, &fakeImmediate{}, &fakeProgress{lastSync: "2026-08-29 10:30:00"})

	w := do(r, http.MethodGet, "/sync/progress")

	assert.Contains(t, w.Body.String(), `"progress":null`)
}

func TestSyncFull(t *testing.T) {
	svc := &fakeSyncService{syncAllResp: map[string]interface{}{"success": true, "synced": float64(42)}}
	r, _ := newSyncRouter(t, svc, &fakeValidator{}, &fakeImmediate{}, &fakeProgress{})

	w := do(r, http.MethodPost, "/sync/full")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"synced":42`)
}

func TestDeleteContentNotifies(t *testing.T) {
	svc := &fakeSyncService{}
	r, db := newSyncRouter(t, svc, &fakeValidator{}, &fakeImmediate{}, &fakeProgress{})
	require.NoError(t, db.Create(&models.Post{Type: "post", Title: "Old", Status: models.StatusPublish}).Error)

	w := do(r, http.MethodDelete, "/content/post/1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"post"}, svc.deleted)

	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestDeleteContentBadID(t *testing.T) {
	svc := &fakeSyncService{}
	r, _ := newSyncRouter(t, svc, &fakeValidator{}, &fakeImmediate{}, &fakeProgress{})

	w := do(r, http.MethodDelete, "/content/post/abc")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.deleted)
}
