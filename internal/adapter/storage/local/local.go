// Package local implements the storage gateway on the local filesystem.
// Storage refs are absolute paths, so ResolvePath is the identity.
package local

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"framex/internal/port"
)

type Storage struct {
	baseDir string
}

func NewStorage(baseDir string) (*Storage, error) {
	s := &Storage{baseDir: baseDir}
	for _, dir := range []string{baseDir, s.uploadsDir(), s.outputsDir(), s.tempRoot()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return s, nil
}

func (s *Storage) uploadsDir() string { return filepath.Join(s.baseDir, "uploads") }
func (s *Storage) outputsDir() string { return filepath.Join(s.baseDir, "outputs") }
func (s *Storage) tempRoot() string   { return filepath.Join(s.baseDir, "temp") }

func (s *Storage) SaveUpload(r io.Reader, filename string) (string, error) {
	path := filepath.Join(s.uploadsDir(), filepath.Base(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

func (s *Storage) SaveArtifact(localPath string) (string, error) {
	dest := filepath.Join(s.outputsDir(), filepath.Base(localPath))
	if err := os.Rename(localPath, dest); err != nil {
		// Rename fails across filesystems; fall back to copy and remove.
		if copyErr := copyFile(localPath, dest); copyErr != nil {
			return "", fmt.Errorf("save artifact: %w", copyErr)
		}
		_ = os.Remove(localPath)
	}
	return dest, nil
}

func (s *Storage) MakeTempDir(prefix string) (string, error) {
	dir, err := os.MkdirTemp(s.tempRoot(), prefix+"_")
	if err != nil {
		return "", fmt.Errorf("make temp dir: %w", err)
	}
	return dir, nil
}

func (s *Storage) ResolvePath(ref string) string {
	return ref
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}

var _ port.Storage = (*Storage)(nil)
