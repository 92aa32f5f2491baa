package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campus-hub/campus-events-api/internal/auth"
	"github.com/campus-hub/campus-events-api/internal/models"
	"github.com/campus-hub/campus-events-api/internal/storage"
)

const maxAttachmentSize = 20 << 20 // 20 MiB

// AttachmentHandler serves multipart upload and raw download, which go
// through plain chi routes rather than huma operations.
type AttachmentHandler struct {
	db    *gorm.DB
	store storage.Store
	log   *zap.Logger
}

func NewAttachmentHandler(db *gorm.DB, store storage.Store, log *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{db: db, store: store, log: log}
}

// HandleUpload stores one file for an event. Creator or admin only.
func (h *AttachmentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context(), h.db)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	eventID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	var event models.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if event.CreatedByID != user.ID && !user.Role.IsAdmin() {
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	key := uuid.NewString()
	if err := h.store.Save(key, file); err != nil {
		h.log.Error("failed to store attachment", zap.Error(err))
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	attachment := models.Attachment{
		EventID:      event.ID,
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		StorageKey:   key,
		UploadedByID: user.ID,
	}
	if err := h.db.Create(&attachment).Error; err != nil {
		if err := h.store.Delete(key); err != nil {
			h.log.Warn("failed to clean up orphaned blob", zap.String("key", key), zap.Error(err))
		}
		http.Error(w, "Failed to save attachment", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// HandleDownload streams an attachment's bytes.
func (h *AttachmentHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := strconv.ParseUint(chi.URLParam(r, "attachmentID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid attachment ID", http.StatusBadRequest)
		return
	}

	var attachment models.Attachment
	if err := h.db.First(&attachment, attachmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Attachment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	blob, err := h.store.Open(attachment.StorageKey)
	if err != nil {
		h.log.Error("failed to open attachment blob",
			zap.String("key", attachment.StorageKey), zap.Error(err))
		http.Error(w, "Failed to open file", http.StatusInternalServerError)
		return
	}
	defer blob.Close()

	if attachment.ContentType != "" {
		w.Header().Set("Content-Type", attachment.ContentType)
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+attachment.FileName+"\"")
	if _, err := io.Copy(w, blob); err != nil {
		h.log.Warn("attachment download interrupted", zap.Error(err))
	}
}

// HandleListForEvent returns attachment metadata for an event.
func (h *AttachmentHandler) HandleListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event ID", http.StatusBadRequest)
		return
	}

	var attachments []models.Attachment
	if err := h.db.Where("event_id = ?", eventID).Find(&attachments).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(attachments); err != nil {
		h.log.Warn("failed to encode attachment list", zap.Error(err))
	}
}
