package models

import "gorm.io/gorm"

// Attachment is file metadata for an event; the bytes live in the blob
// store under StorageKey.
type Attachment struct {
	gorm.Model
	EventID      uint   `gorm:"index" json:"event_id"`
	FileName     string `json:"file_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	StorageKey   string `gorm:"uniqueIndex" json:"-"`
	UploadedByID uint   `json:"uploaded_by_id"`
}
