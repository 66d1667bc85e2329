package service

import (
	"context"
	"time"

	"framex/internal/domain"
	"framex/internal/port"
)

// JobStatusView is the full projection returned for a single job.
type JobStatusView struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	FPS         int    `json:"fps"`
	Frames      int    `json:"frames"`
	ArtifactRef string `json:"artifact_ref,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// JobSummaryView is the reduced projection used for listings.
type JobSummaryView struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	FPS         int    `json:"fps"`
	Frames      int    `json:"frames"`
	ArtifactRef string `json:"artifact_ref,omitempty"`
}

type QueryService struct {
	uow port.UnitOfWork
}

func NewQueryService(uow port.UnitOfWork) *QueryService {
	return &QueryService{uow: uow}
}

// GetJobStatus returns the projection of one job. A missing job and a job
// owned by someone else are indistinguishable to the caller: both are
// domain.ErrNotFound.
func (s *QueryService) GetJobStatus(ctx context.Context, jobID, userID string) (JobStatusView, error) {
	var view JobStatusView
	err := s.uow.WithinTx(ctx, func(tx port.Tx) error {
		job, err := tx.Jobs().Get(ctx, jobID)
		if err != nil {
			return err
		}
		if job == nil || job.UserID != userID {
			return domain.ErrNotFound
		}
		view = JobStatusView{
			JobID:       job.ID,
			Status:      string(job.Status),
			FPS:         job.FPS,
			Frames:      job.FrameCount,
			ArtifactRef: job.ArtifactRef,
			Error:       job.Error,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   job.UpdatedAt.Format(time.RFC3339),
		}
		return nil
	})
	if err != nil {
		return JobStatusView{}, err
	}
	return view, nil
}

// ListJobsByUser returns all the user's jobs, newest first.
func (s *QueryService) ListJobsByUser(ctx context.Context, userID string) ([]JobSummaryView, error) {
	var views []JobSummaryView
	err := s.uow.WithinTx(ctx, func(tx port.Tx) error {
		jobs, err := tx.Jobs().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		views = make([]JobSummaryView, 0, len(jobs))
		for _, job := range jobs {
			views = append(views, JobSummaryView{
				JobID:       job.ID,
				Status:      string(job.Status),
				FPS:         job.FPS,
				Frames:      job.FrameCount,
				ArtifactRef: job.ArtifactRef,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}
