package service

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// image extensions recognized for packaging, matched case-insensitively
var frameExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// PackFrames walks root for image files and writes them into a deflate zip at
// zipPath. Entries are named by path relative to root and appear in
// lexicographic order of that relative path; anything that is not a
// recognized image is skipped.
func PackFrames(root, zipPath string) error {
	var frames []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !frameExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		frames = append(frames, rel)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk frames: %w", err)
	}
	sort.Strings(frames)

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, rel := range frames {
		if err := addFrame(zw, root, rel); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func addFrame(zw *zip.Writer, root, rel string) error {
	f, err := os.Open(filepath.Join(root, rel))
	if err != nil {
		return fmt.Errorf("open frame %s: %w", rel, err)
	}
	defer f.Close()

	// Zip entry names always use forward slashes.
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   filepath.ToSlash(rel),
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", rel, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write entry %s: %w", rel, err)
	}
	return nil
}
