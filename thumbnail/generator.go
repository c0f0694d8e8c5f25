package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus-crane/dronemap/models"
)

// Cache stores generated thumbnails between requests
type Cache interface {
	GetThumbnail(mediaID int) (models.Thumbnail, error)
	UpsertThumbnail(t models.Thumbnail) error
}

type Generator struct {
	cache  Cache
	frames FrameExtractor
}

// NewGenerator creates a Generator. cache may be nil in which case every
// thumbnail is rebuilt on request.
func NewGenerator(cache Cache, frames FrameExtractor) *Generator {
	return &Generator{
		cache:  cache,
		frames: frames,
	}
}

// Fingerprint identifies a specific version of a file on disk
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s-%d-%d", path, info.Size(), info.ModTime().UnixNano())
	return fmt.Sprintf("%016x", xxhash.Sum64String(key)), nil
}

// ForRecord returns the marker thumbnail for a record. The second return
// value is false when there is nothing to show, in which case callers fall
// back to a plain icon.
func (g *Generator) ForRecord(ctx context.Context, rec models.MediaRecord) (Thumbnail, bool) {
	if !rec.HasFile() {
		return Thumbnail{}, false
	}
	path := rec.Path()
	logger := slog.With(slog.Int("media_id", rec.ID), slog.String("path", path))

	fingerprint, err := Fingerprint(path)
	if err != nil {
		logger.With(slog.String("error", err.Error())).Warn("Failed to fingerprint media file")
		return Thumbnail{}, false
	}

	if g.cache != nil {
		if cached, err := g.cache.GetThumbnail(rec.ID); err == nil && cached.Fingerprint == fingerprint {
			return Thumbnail{Image: cached.Image, DominantColours: cached.DominantColours}, true
		}
	}

	var thumb Thumbnail
	switch rec.Type {
	case models.Image:
		thumb, err = FromFile(path)
		if err != nil {
			logger.With(slog.String("error", err.Error())).Error("Error converting image")
			return Thumbnail{}, false
		}
	case models.Video:
		thumb = g.videoThumbnail(ctx, path, logger)
	default:
		return Thumbnail{}, false
	}

	if g.cache != nil {
		err := g.cache.UpsertThumbnail(models.Thumbnail{
			MediaID:         rec.ID,
			Fingerprint:     fingerprint,
			Image:           thumb.Image,
			DominantColours: thumb.DominantColours,
			CreatedAt:       time.Now().Unix(),
		})
		if err != nil {
			logger.With(slog.String("error", err.Error())).Warn("Failed to cache thumbnail")
		}
	}
	return thumb, true
}

func (g *Generator) videoThumbnail(ctx context.Context, path string, logger *slog.Logger) Thumbnail {
	if g.frames == nil {
		return Placeholder()
	}
	frame, err := g.frames.ExtractFrame(ctx, path)
	if err != nil {
		logger.With(slog.String("error", err.Error())).Warn("Error creating video thumbnail, using placeholder")
		return Placeholder()
	}
	thumb, err := FromReader(bytes.NewReader(frame))
	if err != nil {
		logger.With(slog.String("error", err.Error())).Warn("Extracted video frame is unreadable, using placeholder")
		return Placeholder()
	}
	return thumb
}
