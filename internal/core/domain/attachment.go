package domain

import (
	"errors"
	"time"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

// Attachment is the metadata document for a binary stored in object
// storage. ObjectKey is the storage-side name, never exposed to clients.
type Attachment struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	OwnerID     string    `json:"owner_id" bson:"owner_id"`
	RelatedType string    `json:"related_type" bson:"related_type"`
	RelatedID   string    `json:"related_id" bson:"related_id"`
	Filename    string    `json:"filename" bson:"filename"`
	Size        int64     `json:"size" bson:"size"`
	ContentType string    `json:"content_type" bson:"content_type"`
	ObjectKey   string    `json:"-" bson:"object_key"`
	UploadedAt  time.Time `json:"uploaded_at" bson:"uploaded_at"`
}
