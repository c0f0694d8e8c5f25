// Package upload turns an admin upload form into a stored media record
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marcus-crane/dronemap/exif"
	"github.com/marcus-crane/dronemap/models"
)

const (
	DefaultLat      = 34.0522
	DefaultLon      = -118.2437
	DefaultAltitude = 100
	MaxAltitude     = 10000
)

var (
	ErrNoFile          = errors.New("Please select a file to upload")
	ErrNoTitle         = errors.New("Please enter a title for your media")
	ErrUnsupportedType = errors.New("Unsupported file type. Use JPG, PNG or GIF for photos and MP4, MOV, AVI or WEBM for videos")
	ErrAltitudeRange   = errors.New("Altitude must be between 0 and 10000 meters")
	ErrCoordinates     = errors.New("Latitude must be between -90 and 90 and longitude between -180 and 180")
)

// IsValidation reports whether err is a problem with the submitted form
// rather than a failure on our side
func IsValidation(err error) bool {
	for _, target := range []error{ErrNoFile, ErrNoTitle, ErrUnsupportedType, ErrAltitudeRange, ErrCoordinates} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Form is the raw upload submission. Numeric fields are left as strings so
// blanks can be told apart from zero.
type Form struct {
	Filename    string
	File        io.Reader
	Title       string
	Description string
	Lat         string
	Lon         string
	Altitude    string
}

type Library interface {
	Add(record models.MediaRecord) (models.MediaRecord, error)
}

type Geotagger interface {
	Geotag(path string) (exif.Geotag, error)
}

type Publisher interface {
	PublishMedia(record models.MediaRecord) error
}

type Notifier interface {
	MediaUploaded(record models.MediaRecord)
}

type Service struct {
	library   Library
	uploadDir string
	geotagger Geotagger
	publisher Publisher
	notifier  Notifier
	now       func() time.Time
}

// NewService wires the upload flow. geotagger, publisher and notifier are
// optional and may be nil.
func NewService(library Library, uploadDir string, geotagger Geotagger, publisher Publisher, notifier Notifier) *Service {
	return &Service{
		library:   library,
		uploadDir: uploadDir,
		geotagger: geotagger,
		publisher: publisher,
		notifier:  notifier,
		now:       time.Now,
	}
}

type position struct {
	lat, lon    float64
	altitude    int
	hasLat      bool
	hasLon      bool
	hasAltitude bool
}

func parseFloat(raw string) (float64, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = fmt.Errorf("%q is not a finite number", raw)
	}
	return v, true, err
}

func parseInt(raw string) (int, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	return v, true, err
}

func parsePosition(f Form) (position, error) {
	var p position
	var err error

	p.lat, p.hasLat, err = parseFloat(f.Lat)
	if err != nil || p.lat < -90 || p.lat > 90 {
		return p, ErrCoordinates
	}
	p.lon, p.hasLon, err = parseFloat(f.Lon)
	if err != nil || p.lon < -180 || p.lon > 180 {
		return p, ErrCoordinates
	}

	p.altitude, p.hasAltitude, err = parseInt(f.Altitude)
	if err != nil || p.altitude < 0 || p.altitude > MaxAltitude {
		return p, ErrAltitudeRange
	}
	return p, nil
}

func validate(f Form) (models.MediaType, position, error) {
	if f.File == nil || f.Filename == "" {
		return "", position{}, ErrNoFile
	}
	if strings.TrimSpace(f.Title) == "" {
		return "", position{}, ErrNoTitle
	}
	mediaType, ok := models.MediaTypeForExtension(filepath.Ext(f.Filename))
	if !ok {
		return "", position{}, ErrUnsupportedType
	}
	pos, err := parsePosition(f)
	if err != nil {
		return "", position{}, err
	}
	return mediaType, pos, nil
}

// storedName is an 8 character random hex name keeping the original extension
func storedName(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s.%s", id[:8], ext)
}

func (s *Service) save(f Form) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(s.uploadDir, storedName(f.Filename))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	if _, err := io.Copy(out, f.File); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}

// fillPosition completes each blank field on its own, from the file's GPS
// tags when present and otherwise from the defaults
func (s *Service) fillPosition(path string, p position) position {
	if (!p.hasLat || !p.hasLon || !p.hasAltitude) && s.geotagger != nil {
		tag, err := s.geotagger.Geotag(path)
		switch {
		case err == nil:
			if !p.hasLat {
				p.lat, p.hasLat = tag.Lat, true
			}
			if !p.hasLon {
				p.lon, p.hasLon = tag.Lon, true
			}
			if !p.hasAltitude && tag.HasAltitude && tag.Altitude >= 0 && tag.Altitude <= MaxAltitude {
				p.altitude = tag.Altitude
				p.hasAltitude = true
			}
		case errors.Is(err, exif.ErrUnavailable), errors.Is(err, exif.ErrNoLocation):
		default:
			slog.With(slog.String("path", path), slog.String("error", err.Error())).Warn("Failed to read GPS tags from upload")
		}
	}
	if !p.hasLat {
		p.lat = DefaultLat
	}
	if !p.hasLon {
		p.lon = DefaultLon
	}
	if !p.hasAltitude {
		p.altitude = DefaultAltitude
	}
	return p
}

// Upload validates the form, stores the file and appends a new record.
// Nothing is written when validation fails. If the record can't be
// persisted the stored file is left in place and the error is returned.
func (s *Service) Upload(ctx context.Context, f Form) (models.MediaRecord, error) {
	mediaType, pos, err := validate(f)
	if err != nil {
		return models.MediaRecord{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.MediaRecord{}, err
	}

	path, err := s.save(f)
	if err != nil {
		return models.MediaRecord{}, err
	}
	pos = s.fillPosition(path, pos)

	description := strings.TrimSpace(f.Description)
	if description == "" {
		description = fmt.Sprintf("Uploaded %s", mediaType)
	}

	record, err := s.library.Add(models.MediaRecord{
		Type:        mediaType,
		Title:       strings.TrimSpace(f.Title),
		Lat:         pos.lat,
		Lon:         pos.lon,
		Timestamp:   s.now().Format(models.TimestampLayout),
		Altitude:    pos.altitude,
		Description: description,
		Filepath:    models.StringPtr(path),
	})
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("failed to save media data: %w", err)
	}

	slog.With(slog.Int("media_id", record.ID), slog.String("type", string(record.Type))).Info("Media uploaded")

	if s.publisher != nil {
		if err := s.publisher.PublishMedia(record); err != nil {
			slog.With(slog.String("error", err.Error())).Warn("Failed to publish media event")
		}
	}
	if s.notifier != nil {
		s.notifier.MediaUploaded(record)
	}
	return record, nil
}
