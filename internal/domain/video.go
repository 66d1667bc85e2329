package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Video is an uploaded source file. Immutable after creation; jobs reference
// it by ID and are cascade-deleted with it.
type Video struct {
	ID         string
	UserID     string
	Filename   string
	StorageRef string
	Duration   sql.NullFloat64
	CreatedAt  time.Time
}

func NewVideo(userID, filename, storageRef string) *Video {
	return &Video{
		ID:         uuid.NewString(),
		UserID:     userID,
		Filename:   filename,
		StorageRef: storageRef,
		CreatedAt:  time.Now().UTC(),
	}
}
