package thumbnail

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/dronemap/models"
)

type fakeFrames struct {
	frame []byte
	err   error
	calls int
}

func (f *fakeFrames) ExtractFrame(ctx context.Context, path string) ([]byte, error) {
	f.calls++
	return f.frame, f.err
}

type memoryCache struct {
	items map[int]models.Thumbnail
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[int]models.Thumbnail{}}
}

func (m *memoryCache) GetThumbnail(mediaID int) (models.Thumbnail, error) {
	t, ok := m.items[mediaID]
	if !ok {
		return t, sql.ErrNoRows
	}
	return t, nil
}

func (m *memoryCache) UpsertThumbnail(t models.Thumbnail) error {
	m.items[t.MediaID] = t
	return nil
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestFitWithin(t *testing.T) {
	t.Parallel()
	cases := []struct {
		w, h, wantW, wantH int
	}{
		{400, 100, 200, 50},
		{100, 400, 50, 200},
		{150, 120, 150, 120},
		{1000, 1000, 200, 200},
		{5000, 2, 200, 1},
	}
	for _, c := range cases {
		gotW, gotH := fitWithin(c.w, c.h, MaxSize)
		assert.Equal(t, c.wantW, gotW)
		assert.Equal(t, c.wantH, gotH)
	}
}

func TestForRecord_ImageThumbnail(t *testing.T) {
	t.Parallel()
	path := writePNG(t, t.TempDir(), "a.png", solidImage(400, 100, color.RGBA{200, 10, 10, 255}))
	g := NewGenerator(nil, nil)

	thumb, ok := g.ForRecord(context.Background(), models.MediaRecord{ID: 1, Type: models.Image, Filepath: &path})
	require.True(t, ok)
	assert.False(t, thumb.Placeholder)
	img := decodeJPEG(t, thumb.Image)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
	require.NotEmpty(t, thumb.DominantColours)
	assert.True(t, strings.HasPrefix(thumb.DataURI(), "data:image/jpeg;base64,"))
}

func TestForRecord_MissingOrUnreadableFileHasNoThumbnail(t *testing.T) {
	t.Parallel()
	g := NewGenerator(nil, nil)

	_, ok := g.ForRecord(context.Background(), models.MediaRecord{ID: 1, Type: models.Image})
	assert.False(t, ok)

	missing := filepath.Join(t.TempDir(), "gone.jpg")
	_, ok = g.ForRecord(context.Background(), models.MediaRecord{ID: 1, Type: models.Image, Filepath: &missing})
	assert.False(t, ok)

	corrupt := filepath.Join(t.TempDir(), "bad.jpg")
	require.NoError(t, os.WriteFile(corrupt, []byte("definitely not a jpeg"), 0644))
	_, ok = g.ForRecord(context.Background(), models.MediaRecord{ID: 1, Type: models.Image, Filepath: &corrupt})
	assert.False(t, ok)
}

func TestForRecord_VideoFallsBackToPlaceholder(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0644))
	frames := &fakeFrames{err: errors.New("exit status 1")}
	g := NewGenerator(nil, frames)

	thumb, ok := g.ForRecord(context.Background(), models.MediaRecord{ID: 2, Type: models.Video, Filepath: &path})
	require.True(t, ok)
	assert.True(t, thumb.Placeholder)
	assert.Equal(t, 1, frames.calls)

	img := decodeJPEG(t, thumb.Image)
	assert.Equal(t, image.Rect(0, 0, 200, 200), img.Bounds())
	r, gr, b, _ := img.At(100, 100).RGBA()
	assert.InDelta(t, 40, int(r>>8), 3)
	assert.InDelta(t, 44, int(gr>>8), 3)
	assert.InDelta(t, 52, int(b>>8), 3)
}

func TestForRecord_VideoUsesExtractedFrame(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "clip.mov")
	require.NoError(t, os.WriteFile(path, []byte("video bytes"), 0644))

	var frame bytes.Buffer
	require.NoError(t, jpeg.Encode(&frame, solidImage(640, 360, color.RGBA{0, 0, 255, 255}), nil))
	g := NewGenerator(nil, &fakeFrames{frame: frame.Bytes()})

	thumb, ok := g.ForRecord(context.Background(), models.MediaRecord{ID: 3, Type: models.Video, Filepath: &path})
	require.True(t, ok)
	assert.False(t, thumb.Placeholder)
	img := decodeJPEG(t, thumb.Image)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 112, img.Bounds().Dy())
}

func TestForRecord_CachesByFingerprint(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.webm")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	cache := newMemoryCache()
	frames := &fakeFrames{err: errors.New("no ffmpeg")}
	g := NewGenerator(cache, frames)
	rec := models.MediaRecord{ID: 9, Type: models.Video, Filepath: &path}

	first, ok := g.ForRecord(context.Background(), rec)
	require.True(t, ok)
	second, ok := g.ForRecord(context.Background(), rec)
	require.True(t, ok)
	assert.Equal(t, first.Image, second.Image)
	assert.Equal(t, 1, frames.calls)

	// Changing the file invalidates the cached entry
	require.NoError(t, os.WriteFile(path, []byte("version two"), 0644))
	_, ok = g.ForRecord(context.Background(), rec)
	require.True(t, ok)
	assert.Equal(t, 2, frames.calls)
}

func TestFFmpeg_MissingBinary(t *testing.T) {
	t.Parallel()
	f := NewFFmpeg(filepath.Join(t.TempDir(), "no-ffmpeg-here"))
	_, err := f.ExtractFrame(context.Background(), "clip.mp4")
	assert.Error(t, err)
}

func TestColorToHexString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "#282c34", colorToHexString(PlaceholderColour))
	assert.Equal(t, "#ff0000", colorToHexString(color.RGBA{255, 0, 0, 255}))
}
