package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"framex/internal/domain"
	"framex/internal/infrastructure/logger"
	"framex/internal/port"
)

// ErrNoFrames is the terminal error recorded when the extractor ran cleanly
// but produced nothing to package.
var ErrNoFrames = errors.New("No frames extracted")

// errSkip rolls back a claim transaction that found nothing to run.
var errSkip = errors.New("skip delivery")

// ProcessService executes the full lifecycle of one dispatched job:
// queued -> running -> done|error. The running transition and the finalizing
// transition are two independently-committed transactions so that a crash
// during extraction leaves a durably-observable running state instead of a
// silent retry from queued.
type ProcessService struct {
	uow       port.UnitOfWork
	storage   port.Storage
	extractor port.FrameExtractor
	notifier  port.Notifier
}

func NewProcessService(uow port.UnitOfWork, storage port.Storage, extractor port.FrameExtractor, notifier port.Notifier) *ProcessService {
	return &ProcessService{
		uow:       uow,
		storage:   storage,
		extractor: extractor,
		notifier:  notifier,
	}
}

// Execute runs the job to a terminal state. Job-level failures (extractor
// errors, zero frames, missing video) end in status error with a nil return;
// a non-nil return means persistence itself failed and the delivery should be
// retried by the bus.
func (s *ProcessService) Execute(ctx context.Context, jobID string) error {
	var job *domain.VideoJob
	var skipReason string

	err := s.uow.WithinTx(ctx, func(tx port.Tx) error {
		j, err := tx.Jobs().Get(ctx, jobID)
		if err != nil {
			return err
		}
		if j == nil {
			// Deleted or never existed; nothing to do and nobody to tell.
			skipReason = "not found"
			return errSkip
		}
		if j.Status.Terminal() {
			// Redelivered after finishing. The recorded outcome stands; a
			// second run would overwrite the artifact and notify twice.
			skipReason = "already " + string(j.Status)
			return errSkip
		}
		j.MarkRunning()
		if err := tx.Jobs().Update(ctx, j); err != nil {
			return err
		}
		job = j
		return nil
	})
	if errors.Is(err, errSkip) {
		logger.Warn.Printf("job %s %s, skipping", jobID, skipReason)
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark job %s running: %w", jobID, err)
	}

	finalStatus := domain.JobStatusError
	var errMsg, artifactRef string

	err = s.uow.WithinTx(ctx, func(tx port.Tx) error {
		j, err := tx.Jobs().Get(ctx, jobID)
		if err != nil {
			return err
		}
		if j == nil {
			job = nil
			return nil
		}
		job = j

		video, err := tx.Videos().Get(ctx, j.VideoID)
		if err != nil {
			return err
		}
		if video == nil {
			errMsg = "Video not found"
			j.MarkError(errMsg)
			return tx.Jobs().Update(ctx, j)
		}

		inputPath := s.storage.ResolvePath(video.StorageRef)
		tempDir, err := s.storage.MakeTempDir(j.ID)
		if err != nil {
			errMsg = err.Error()
			j.MarkError(errMsg)
			return tx.Jobs().Update(ctx, j)
		}
		// The temp dir is gone on every exit path; removal failures never escalate.
		defer func() { _ = os.RemoveAll(tempDir) }()

		frameCount, ref, runErr := s.runExtraction(ctx, j, inputPath, tempDir)
		if runErr != nil {
			errMsg = runErr.Error()
			j.MarkError(errMsg)
			return tx.Jobs().Update(ctx, j)
		}

		j.MarkDone(frameCount, ref)
		finalStatus = domain.JobStatusDone
		artifactRef = ref
		return tx.Jobs().Update(ctx, j)
	})
	if err != nil {
		return fmt.Errorf("finalize job %s: %w", jobID, err)
	}
	if job == nil {
		logger.Warn.Printf("job %s vanished before execution, skipping", jobID)
		return nil
	}

	// Outside both transactions: the committed job state is authoritative,
	// notification is advisory and must never propagate a failure.
	n := port.Notification{
		UserID: job.UserID,
		JobID:  jobID,
		Status: port.NotifyError,
	}
	if finalStatus == domain.JobStatusDone {
		n.Status = port.NotifySuccess
		n.VideoURL = artifactRef
		logger.Info.Printf("job %s done: frames=%d artifact=%s", jobID, job.FrameCount, artifactRef)
	} else {
		n.ErrorMessage = errMsg
		logger.Error.Printf("job %s failed: %s", jobID, errMsg)
	}
	s.notifier.Notify(ctx, n)

	return nil
}

// runExtraction does the fallible middle of the job: extract frames, package
// them, move the archive into durable storage. The returned error message is
// what gets persisted on the job.
func (s *ProcessService) runExtraction(ctx context.Context, job *domain.VideoJob, inputPath, tempDir string) (int, string, error) {
	frameCount, err := s.extractor.ExtractFrames(ctx, inputPath, tempDir, job.FPS)
	if err != nil {
		return 0, "", err
	}
	if frameCount <= 0 {
		return 0, "", ErrNoFrames
	}

	zipPath := filepath.Join(tempDir, fmt.Sprintf("frames_%s.zip", job.ID))
	if err := PackFrames(tempDir, zipPath); err != nil {
		return 0, "", fmt.Errorf("package frames: %w", err)
	}

	ref, err := s.storage.SaveArtifact(zipPath)
	if err != nil {
		return 0, "", fmt.Errorf("save artifact: %w", err)
	}
	return frameCount, ref, nil
}
