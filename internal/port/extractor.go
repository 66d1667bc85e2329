package port

import "context"

// FrameExtractor samples a video into individual image files at the given
// rate and returns how many frames were produced. Implementations must bound
// execution time and surface the tool's diagnostics on failure.
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, inputPath, outputDir string, fps int) (int, error)
}
