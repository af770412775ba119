package utils

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// NewAttachmentID returns a fresh identifier for a topic's attachment folder.
func NewAttachmentID() string {
	return uuid.NewString()
}

// MediaStore removes attachment folders under a media root. Errors are
// returned explicitly so callers can decide to log and continue.
type MediaStore struct {
	Root string
}

// RemoveTopicAttachments deletes the folder holding a topic's attachment, if
// any. A missing folder is not an error.
func (m MediaStore) RemoveTopicAttachments(attachmentID string) error {
	if attachmentID == "" {
		return nil
	}
	dir := filepath.Join(m.Root, "topics", attachmentID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return os.RemoveAll(dir)
}
