package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"framex/internal/domain"
)

type videoRepository struct {
	tx *sql.Tx
}

func (r *videoRepository) Add(ctx context.Context, v *domain.Video) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO videos (id, user_id, filename, storage_ref, duration, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Filename, v.StorageRef, v.Duration, v.CreatedAt,
	)
	return err
}

func (r *videoRepository) Get(ctx context.Context, id string) (*domain.Video, error) {
	row := r.tx.QueryRowContext(ctx,
		`SELECT id, user_id, filename, storage_ref, duration, created_at
		 FROM videos WHERE id = ?`, id,
	)

	var v domain.Video
	err := row.Scan(&v.ID, &v.UserID, &v.Filename, &v.StorageRef, &v.Duration, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *videoRepository) Delete(ctx context.Context, id string) error {
	// Jobs go with the video via ON DELETE CASCADE.
	_, err := r.tx.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	return err
}

type jobRepository struct {
	tx *sql.Tx
}

const jobColumns = `id, video_id, user_id, status, fps, frame_count, artifact_ref, error, created_at, updated_at`

func (r *jobRepository) Add(ctx context.Context, j *domain.VideoJob) error {
	_, err := r.tx.ExecContext(ctx,
		`INSERT INTO video_jobs (`+jobColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.VideoID, j.UserID, string(j.Status), j.FPS, j.FrameCount,
		j.ArtifactRef, j.Error, j.CreatedAt, j.UpdatedAt,
	)
	return err
}

func (r *jobRepository) Get(ctx context.Context, id string) (*domain.VideoJob, error) {
	row := r.tx.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM video_jobs WHERE id = ?`, id,
	)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (r *jobRepository) Update(ctx context.Context, j *domain.VideoJob) error {
	_, err := r.tx.ExecContext(ctx,
		`UPDATE video_jobs
		 SET status = ?, fps = ?, frame_count = ?, artifact_ref = ?, error = ?, updated_at = ?
		 WHERE id = ?`,
		string(j.Status), j.FPS, j.FrameCount, j.ArtifactRef, j.Error, j.UpdatedAt, j.ID,
	)
	return err
}

func (r *jobRepository) ListByUser(ctx context.Context, userID string) ([]*domain.VideoJob, error) {
	rows, err := r.tx.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM video_jobs
		 WHERE user_id = ? ORDER BY created_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*domain.VideoJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*domain.VideoJob, error) {
	var j domain.VideoJob
	var status string
	err := s.Scan(&j.ID, &j.VideoID, &j.UserID, &status, &j.FPS, &j.FrameCount,
		&j.ArtifactRef, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = domain.JobStatus(status)
	return &j, nil
}
