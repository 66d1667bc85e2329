package service

import (
	"context"
	"fmt"
	"io"

	"framex/internal/domain"
	"framex/internal/infrastructure/logger"
	"framex/internal/port"
)

type EnqueueService struct {
	uow     port.UnitOfWork
	storage port.Storage
	bus     port.MessageBus
}

func NewEnqueueService(uow port.UnitOfWork, storage port.Storage, bus port.MessageBus) *EnqueueService {
	return &EnqueueService{
		uow:     uow,
		storage: storage,
		bus:     bus,
	}
}

// Enqueue persists the upload, creates the video and its queued job in one
// transaction, and dispatches the job id only after the commit. A crash after
// commit but before dispatch leaves the job queued forever; re-driving it is
// the operator's problem, not handled here.
func (s *EnqueueService) Enqueue(ctx context.Context, userID string, r io.Reader, filename string, fps int) (string, error) {
	if fps < 0 {
		return "", fmt.Errorf("fps must be a positive integer, got %d", fps)
	}

	storageRef, err := s.storage.SaveUpload(r, filename)
	if err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}

	video := domain.NewVideo(userID, filename, storageRef)
	job := domain.NewVideoJob(video.ID, userID, fps)

	err = s.uow.WithinTx(ctx, func(tx port.Tx) error {
		if err := tx.Videos().Add(ctx, video); err != nil {
			return fmt.Errorf("add video: %w", err)
		}
		if err := tx.Jobs().Add(ctx, job); err != nil {
			return fmt.Errorf("add job: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := s.bus.EnqueueProcess(ctx, job.ID); err != nil {
		return "", fmt.Errorf("dispatch job %s: %w", job.ID, err)
	}

	logger.Info.Printf("job enqueued: id=%s video=%s user=%s fps=%d", job.ID, video.ID, userID, job.FPS)
	return job.ID, nil
}
