package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"framex/internal/domain"
	"framex/internal/port"
)

// memUnitOfWork is an in-memory UnitOfWork for service tests. Writes made
// inside a failing fn are discarded, mirroring a rollback. Commits counts
// successful transactions. fn runs against a snapshot with the lock
// released, so tests may read committed state from inside a transaction.
type memUnitOfWork struct {
	mu      sync.Mutex
	videos  map[string]domain.Video
	jobs    map[string]domain.VideoJob
	Commits int
	FailTx  error // when set, WithinTx fails before running fn
}

func newMemUnitOfWork() *memUnitOfWork {
	return &memUnitOfWork{
		videos: make(map[string]domain.Video),
		jobs:   make(map[string]domain.VideoJob),
	}
}

func (u *memUnitOfWork) WithinTx(ctx context.Context, fn func(tx port.Tx) error) error {
	u.mu.Lock()
	if u.FailTx != nil {
		u.mu.Unlock()
		return u.FailTx
	}
	tx := &memTx{
		videos: cloneMap(u.videos),
		jobs:   cloneMap(u.jobs),
	}
	u.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	u.mu.Lock()
	u.videos = tx.videos
	u.jobs = tx.jobs
	u.Commits++
	u.mu.Unlock()
	return nil
}

func (u *memUnitOfWork) putVideo(v *domain.Video) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.videos[v.ID] = *v
}

func (u *memUnitOfWork) putJob(j *domain.VideoJob) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.jobs[j.ID] = *j
}

func (u *memUnitOfWork) job(id string) (domain.VideoJob, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	j, ok := u.jobs[id]
	return j, ok
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memTx struct {
	videos map[string]domain.Video
	jobs   map[string]domain.VideoJob
}

func (t *memTx) Videos() port.VideoRepository { return &memVideoRepo{t} }
func (t *memTx) Jobs() port.JobRepository     { return &memJobRepo{t} }

type memVideoRepo struct{ tx *memTx }

func (r *memVideoRepo) Add(_ context.Context, v *domain.Video) error {
	r.tx.videos[v.ID] = *v
	return nil
}

func (r *memVideoRepo) Get(_ context.Context, id string) (*domain.Video, error) {
	v, ok := r.tx.videos[id]
	if !ok {
		return nil, nil
	}
	out := v
	return &out, nil
}

func (r *memVideoRepo) Delete(_ context.Context, id string) error {
	delete(r.tx.videos, id)
	for jid, j := range r.tx.jobs {
		if j.VideoID == id {
			delete(r.tx.jobs, jid)
		}
	}
	return nil
}

type memJobRepo struct{ tx *memTx }

func (r *memJobRepo) Add(_ context.Context, j *domain.VideoJob) error {
	r.tx.jobs[j.ID] = *j
	return nil
}

func (r *memJobRepo) Get(_ context.Context, id string) (*domain.VideoJob, error) {
	j, ok := r.tx.jobs[id]
	if !ok {
		return nil, nil
	}
	out := j
	return &out, nil
}

func (r *memJobRepo) Update(_ context.Context, j *domain.VideoJob) error {
	if _, ok := r.tx.jobs[j.ID]; !ok {
		return nil
	}
	r.tx.jobs[j.ID] = *j
	return nil
}

func (r *memJobRepo) ListByUser(_ context.Context, userID string) ([]*domain.VideoJob, error) {
	var jobs []*domain.VideoJob
	for _, j := range r.tx.jobs {
		if j.UserID == userID {
			out := j
			jobs = append(jobs, &out)
		}
	}
	sort.Slice(jobs, func(a, b int) bool {
		return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
	})
	return jobs, nil
}

// fakeStorage keeps everything under a test-owned base dir.
type fakeStorage struct {
	baseDir         string
	SaveUploadErr   error
	SaveArtifactErr error
	TempDirs        []string
}

func newFakeStorage(baseDir string) *fakeStorage {
	return &fakeStorage{baseDir: baseDir}
}

func (s *fakeStorage) SaveUpload(r io.Reader, filename string) (string, error) {
	if s.SaveUploadErr != nil {
		return "", s.SaveUploadErr
	}
	path := filepath.Join(s.baseDir, "uploads", filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return path, nil
}

func (s *fakeStorage) SaveArtifact(localPath string) (string, error) {
	if s.SaveArtifactErr != nil {
		return "", s.SaveArtifactErr
	}
	dest := filepath.Join(s.baseDir, "outputs", filepath.Base(localPath))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}
	if err := os.Rename(localPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (s *fakeStorage) MakeTempDir(prefix string) (string, error) {
	root := filepath.Join(s.baseDir, "temp")
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", err
	}
	dir, err := os.MkdirTemp(root, prefix+"_")
	if err != nil {
		return "", err
	}
	s.TempDirs = append(s.TempDirs, dir)
	return dir, nil
}

func (s *fakeStorage) ResolvePath(ref string) string { return ref }

// fakeExtractor runs a test-supplied function, or reports Frames/Err.
type fakeExtractor struct {
	Fn     func(ctx context.Context, inputPath, outputDir string, fps int) (int, error)
	Frames int
	Err    error
	Calls  int
}

func (e *fakeExtractor) ExtractFrames(ctx context.Context, inputPath, outputDir string, fps int) (int, error) {
	e.Calls++
	if e.Fn != nil {
		return e.Fn(ctx, inputPath, outputDir, fps)
	}
	if e.Err != nil {
		return 0, e.Err
	}
	return e.Frames, nil
}

type fakeNotifier struct {
	Notifications []port.Notification
}

func (n *fakeNotifier) Notify(_ context.Context, notification port.Notification) {
	n.Notifications = append(n.Notifications, notification)
}

type fakeBus struct {
	Dispatched []string
	Err        error
}

func (b *fakeBus) EnqueueProcess(_ context.Context, jobID string) error {
	if b.Err != nil {
		return b.Err
	}
	b.Dispatched = append(b.Dispatched, jobID)
	return nil
}

// writeFrame creates a file with throwaway content under dir.
func writeFrame(dir, rel string) error {
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("frame %s", rel)), 0644)
}
