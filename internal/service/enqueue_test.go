package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"framex/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueService_Success(t *testing.T) {
	uow := newMemUnitOfWork()
	storage := newFakeStorage(t.TempDir())
	bus := &fakeBus{}
	svc := NewEnqueueService(uow, storage, bus)

	jobID, err := svc.Enqueue(context.Background(), "alice", strings.NewReader("bytes"), "video.mp4", 5)

	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job, ok := uow.job(jobID)
	require.True(t, ok)
	assert.Equal(t, domain.JobStatusQueued, job.Status)
	assert.Equal(t, 5, job.FPS)
	assert.Equal(t, "alice", job.UserID)

	video, err := (&memVideoRepo{&memTx{videos: uow.videos, jobs: uow.jobs}}).Get(context.Background(), job.VideoID)
	require.NoError(t, err)
	require.NotNil(t, video)
	assert.Equal(t, "alice", video.UserID)
	assert.Equal(t, "video.mp4", video.Filename)

	// Upload landed where the storage ref points.
	_, statErr := os.Stat(video.StorageRef)
	assert.NoError(t, statErr)

	assert.Equal(t, []string{jobID}, bus.Dispatched)
	assert.Equal(t, 1, uow.Commits, "video and job must share one transaction")
}

func TestEnqueueService_DefaultFPS(t *testing.T) {
	uow := newMemUnitOfWork()
	svc := NewEnqueueService(uow, newFakeStorage(t.TempDir()), &fakeBus{})

	jobID, err := svc.Enqueue(context.Background(), "alice", strings.NewReader("bytes"), "video.mp4", 0)

	require.NoError(t, err)
	job, _ := uow.job(jobID)
	assert.Equal(t, domain.DefaultFPS, job.FPS)
}

func TestEnqueueService_NegativeFPS(t *testing.T) {
	svc := NewEnqueueService(newMemUnitOfWork(), newFakeStorage(t.TempDir()), &fakeBus{})

	_, err := svc.Enqueue(context.Background(), "alice", strings.NewReader("bytes"), "video.mp4", -2)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fps must be a positive integer")
}

func TestEnqueueService_StorageFailure(t *testing.T) {
	uow := newMemUnitOfWork()
	storage := newFakeStorage(t.TempDir())
	storage.SaveUploadErr = errors.New("no space left on device")
	bus := &fakeBus{}
	svc := NewEnqueueService(uow, storage, bus)

	_, err := svc.Enqueue(context.Background(), "alice", strings.NewReader("bytes"), "video.mp4", 1)

	require.Error(t, err)
	assert.Zero(t, uow.Commits)
	assert.Empty(t, bus.Dispatched, "nothing may be dispatched without a durable job")
}

func TestEnqueueService_TxFailureSkipsDispatch(t *testing.T) {
	uow := newMemUnitOfWork()
	uow.FailTx = errors.New("database is locked")
	bus := &fakeBus{}
	svc := NewEnqueueService(uow, newFakeStorage(t.TempDir()), bus)

	_, err := svc.Enqueue(context.Background(), "alice", strings.NewReader("bytes"), "video.mp4", 1)

	require.Error(t, err)
	assert.Empty(t, bus.Dispatched)
}

func TestEnqueueService_DispatchFailureSurfaces(t *testing.T) {
	uow := newMemUnitOfWork()
	bus := &fakeBus{Err: errors.New("broker unreachable")}
	svc := NewEnqueueService(uow, newFakeStorage(t.TempDir()), bus)

	_, err := svc.Enqueue(context.Background(), "alice", strings.NewReader("bytes"), "video.mp4", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unreachable")
	// The job stays committed and queued: an at-least-once gap, not a rollback.
	assert.Equal(t, 1, uow.Commits)
}
