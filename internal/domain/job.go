package domain

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusError   JobStatus = "error"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

// VideoJob is one unit of frame-extraction work. Status moves strictly
// queued -> running -> done|error. ArtifactRef is set exactly when the job
// finishes done; Error exactly when it finishes in error.
type VideoJob struct {
	ID          string
	VideoID     string
	UserID      string
	Status      JobStatus
	FPS         int
	FrameCount  int
	ArtifactRef string
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const DefaultFPS = 1

func NewVideoJob(videoID, userID string, fps int) *VideoJob {
	if fps <= 0 {
		fps = DefaultFPS
	}
	now := time.Now().UTC()
	return &VideoJob{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		UserID:    userID,
		Status:    JobStatusQueued,
		FPS:       fps,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (j *VideoJob) MarkRunning() {
	j.Status = JobStatusRunning
	j.UpdatedAt = time.Now().UTC()
}

func (j *VideoJob) MarkDone(frameCount int, artifactRef string) {
	j.Status = JobStatusDone
	j.FrameCount = frameCount
	j.ArtifactRef = artifactRef
	j.Error = ""
	j.UpdatedAt = time.Now().UTC()
}

func (j *VideoJob) MarkError(msg string) {
	j.Status = JobStatusError
	j.Error = msg
	j.ArtifactRef = ""
	j.UpdatedAt = time.Now().UTC()
}
