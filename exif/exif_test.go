package exif

import (
	"testing"

	"github.com/barasher/go-exiftool"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeotagFromMetadata(t *testing.T) {
	t.Parallel()
	fm := exiftool.EmptyFileMetadata()
	fm.SetFloat("GPSLatitude", 34.0195)
	fm.SetFloat("GPSLongitude", -118.4912)
	fm.SetFloat("GPSAltitude", 119.6)

	tag, err := geotagFromMetadata(fm)
	require.NoError(t, err)
	want := Geotag{Lat: 34.0195, Lon: -118.4912, Altitude: 120, HasAltitude: true}
	if diff := cmp.Diff(want, tag); diff != "" {
		t.Fatalf("geotag mismatch (-want +got):\n%s", diff)
	}
}

func TestGeotagFromMetadata_StringValuesAndNoAltitude(t *testing.T) {
	t.Parallel()
	fm := exiftool.FileMetadata{Fields: map[string]interface{}{
		"GPSLatitude":  "-33.8568",
		"GPSLongitude": "151.2153",
	}}

	tag, err := geotagFromMetadata(fm)
	require.NoError(t, err)
	assert.Equal(t, -33.8568, tag.Lat)
	assert.Equal(t, 151.2153, tag.Lon)
	assert.False(t, tag.HasAltitude)
	assert.Equal(t, 0, tag.Altitude)
}

func TestGeotagFromMetadata_BelowSeaLevel(t *testing.T) {
	t.Parallel()
	fm := exiftool.EmptyFileMetadata()
	fm.SetFloat("GPSLatitude", 31.5)
	fm.SetFloat("GPSLongitude", 35.5)
	fm.SetFloat("GPSAltitude", 430)
	fm.SetInt("GPSAltitudeRef", 1)

	tag, err := geotagFromMetadata(fm)
	require.NoError(t, err)
	assert.Equal(t, -430, tag.Altitude)
}

func TestGeotagFromMetadata_MissingOrInvalid(t *testing.T) {
	t.Parallel()
	cases := map[string]map[string]interface{}{
		"no tags":       {},
		"latitude only": {"GPSLatitude": 10.0},
		"not a number":  {"GPSLatitude": "north", "GPSLongitude": 1.0},
		"out of range":  {"GPSLatitude": 95.0, "GPSLongitude": 1.0},
		"NaN latitude":  {"GPSLatitude": "NaN", "GPSLongitude": 1.0},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := geotagFromMetadata(exiftool.FileMetadata{Fields: fields})
			assert.ErrorIs(t, err, ErrNoLocation)
		})
	}
}

func TestDisabledReader(t *testing.T) {
	t.Parallel()
	r := NewReader(false, "")
	assert.False(t, r.Enabled())
	_, err := r.Geotag("anything.jpg")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NoError(t, r.Close())
}
