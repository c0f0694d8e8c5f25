// Package exif reads GPS tags out of uploaded media with exiftool
package exif

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/barasher/go-exiftool"
)

// ErrUnavailable is returned when exiftool is disabled or couldn't be started
var ErrUnavailable = errors.New("exiftool is not available")

// ErrNoLocation means the file carries no usable GPS position
var ErrNoLocation = errors.New("no GPS position in file")

type Geotag struct {
	Lat         float64
	Lon         float64
	Altitude    int
	HasAltitude bool
}

type Reader struct {
	et *exiftool.Exiftool
}

// NewReader starts a long running exiftool process. When enabled is false,
// or the binary can't be found, a Reader is still returned but every lookup
// reports ErrUnavailable.
func NewReader(enabled bool, binaryPath string) *Reader {
	if !enabled {
		return &Reader{}
	}
	opts := []func(*exiftool.Exiftool) error{exiftool.NoPrintConversion()}
	if binaryPath != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(binaryPath))
	}
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		slog.With(slog.String("error", err.Error())).Warn("exiftool could not be started, uploads will use default coordinates")
		return &Reader{}
	}
	return &Reader{et: et}
}

func (r *Reader) Enabled() bool {
	return r != nil && r.et != nil
}

func (r *Reader) Geotag(path string) (Geotag, error) {
	if !r.Enabled() {
		return Geotag{}, ErrUnavailable
	}
	fms := r.et.ExtractMetadata(path)
	if len(fms) == 0 {
		return Geotag{}, ErrNoLocation
	}
	if fms[0].Err != nil {
		return Geotag{}, fmt.Errorf("failed to read metadata from %s: %w", path, fms[0].Err)
	}
	return geotagFromMetadata(fms[0])
}

// geotagFromMetadata expects numeric output, where southern and western
// positions are already negative.
func geotagFromMetadata(fm exiftool.FileMetadata) (Geotag, error) {
	lat, err := fm.GetFloat("GPSLatitude")
	if err != nil {
		return Geotag{}, ErrNoLocation
	}
	lon, err := fm.GetFloat("GPSLongitude")
	if err != nil {
		return Geotag{}, ErrNoLocation
	}
	if !(lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180) {
		return Geotag{}, ErrNoLocation
	}
	tag := Geotag{Lat: lat, Lon: lon}
	if alt, err := fm.GetFloat("GPSAltitude"); err == nil && !math.IsNaN(alt) && !math.IsInf(alt, 0) {
		// GPSAltitudeRef 1 is below sea level
		if ref, err := fm.GetInt("GPSAltitudeRef"); err == nil && ref == 1 {
			alt = -alt
		}
		tag.Altitude = int(math.Round(alt))
		tag.HasAltitude = true
	}
	return tag, nil
}

func (r *Reader) Close() error {
	if !r.Enabled() {
		return nil
	}
	return r.et.Close()
}
