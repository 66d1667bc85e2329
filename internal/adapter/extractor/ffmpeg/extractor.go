package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"framex/internal/port"
)

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrInvalidPath = errors.New("path contains invalid characters")
)

// Extractor invokes ffmpeg to sample a video into numbered jpeg frames.
// Every invocation is bounded by the configured timeout.
type Extractor struct {
	bin     string
	timeout time.Duration
}

func NewExtractor(bin string, timeout time.Duration) *Extractor {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Extractor{bin: bin, timeout: timeout}
}

func (e *Extractor) ExtractFrames(ctx context.Context, inputPath, outputDir string, fps int) (int, error) {
	if err := validatePath(inputPath); err != nil {
		return 0, fmt.Errorf("input path: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, e.bin, buildArgs(inputPath, outputDir, fps)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("ffmpeg timed out after %s", e.timeout)
		}
		return 0, errors.New(diagnostic(stderr.String(), stdout.String()))
	}

	return countFrames(outputDir)
}

func buildArgs(inputPath, outputDir string, fps int) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-v", "error",
		"-i", inputPath,
		"-vf", fmt.Sprintf("fps=%d", fps),
		"-q:v", "2",
		filepath.Join(outputDir, "%08d.jpg"),
	}
}

// diagnostic picks the most useful tool output: stderr first, stdout as
// fallback, and a generic message when the tool said nothing at all.
func diagnostic(stderr, stdout string) string {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(stdout); msg != "" {
		return msg
	}
	return "ffmpeg failed"
}

func countFrames(outputDir string) (int, error) {
	frames, err := filepath.Glob(filepath.Join(outputDir, "*.jpg"))
	if err != nil {
		return 0, fmt.Errorf("count frames: %w", err)
	}
	return len(frames), nil
}

func validatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return ErrInvalidPath
	}
	return nil
}

var _ port.FrameExtractor = (*Extractor)(nil)
