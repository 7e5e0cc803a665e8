package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopassist/internal/logger"
	"shopassist/internal/models"
)

// SyncService is the orchestrator surface the admin endpoints drive.
type SyncService interface {
	SyncAll() (map[string]interface{}, error)
	NotifyDelete(contentID uint, contentType string)
}

type ConnectionValidator interface {
	ValidateConnection() (bool, string)
}

type ImmediateScheduler interface {
	ScheduleImmediate() error
}

type ProgressReader interface {
	LoadProgress() *models.SyncProgress
	LastSync() string
}

type SyncHandler struct {
	db        *gorm.DB
	service   SyncService
	validator ConnectionValidator
	scheduler ImmediateScheduler
	progress  ProgressReader
	logger    *logger.Logger
}

func NewSyncHandler(db *gorm.DB, service SyncService, validator ConnectionValidator, scheduler ImmediateScheduler, progress ProgressReader, logger *logger.Logger) *SyncHandler {
	return &SyncHandler{
		db:        db,
		service:   service,
		validator: validator,
		scheduler: scheduler,
		progress:  progress,
		logger:    logger,
	}
}

// SyncNow validates the connection and schedules a background sync run.
func (h *SyncHandler) SyncNow(c *gin.Context) {
	ok, message := h.validator.ValidateConnection()
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Connection validation failed: " + message,
		})
		return
	}

	if err := h.scheduler.ScheduleImmediate(); err != nil {
		h.logger.Error("failed to schedule background sync: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to schedule sync"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Background sync scheduled successfully"})
}

// SyncFull runs the synchronous full sync and returns the upstream result.
func (h *SyncHandler) SyncFull(c *gin.Context) {
	resp, err := h.service.SyncAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Progress reports the persisted checkpoint for admin polling. A null
// progress means no sync is in flight.
func (h *SyncHandler) Progress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"progress":  h.progress.LoadProgress(),
		"last_sync": h.progress.LastSync(),
	})
}

// Connection reports the current connection status for the admin indicator.
func (h *SyncHandler) Connection(c *gin.Context) {
	ok, message := h.validator.ValidateConnection()
	c.JSON(http.StatusOK, gin.H{"success": ok, "message": message})
}

// DeleteContent removes a content item locally and notifies the assistant so
// it drops the item from its index. The notification is fire-and-forget.
func (h *SyncHandler) DeleteContent(c *gin.Context) {
	contentType := c.Param("type")
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid content id"})
		return
	}

	if contentType == models.ContentTypeProduct {
		err = h.db.Delete(&models.Product{}, "id = ?", id).Error
	} else {
		err = h.db.Delete(&models.Post{}, "id = ? AND type = ?", id, contentType).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete content"})
		return
	}

	h.service.NotifyDelete(uint(id), contentType)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
