package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// FrameOffset is where in the video the representative still is taken from
	FrameOffset = "00:00:00.000"

	frameTimeout    = 15 * time.Second
	maxErrorPreview = 180
)

// FrameExtractor pulls a single JPEG frame out of a video file
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, path string) ([]byte, error)
}

// FFmpeg shells out to the ffmpeg binary
type FFmpeg struct {
	Path string
}

func NewFFmpeg(path string) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{Path: path}
}

func (f *FFmpeg) ExtractFrame(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, frameTimeout)
	defer cancel()

	cmd := exec.CommandContext(
		ctx,
		f.Path,
		"-loglevel", "error",
		"-ss", FrameOffset,
		"-i", path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxErrorPreview {
			msg = msg[:maxErrorPreview]
		}
		return nil, fmt.Errorf("ffmpeg frame extraction failed: %w (%s)", err, msg)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame for %s", path)
	}
	return stdout.Bytes(), nil
}
