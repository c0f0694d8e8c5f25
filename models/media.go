package models

import (
	"os"
	"strings"
)

type MediaType string

const (
	Image MediaType = "image"
	Video MediaType = "video"
)

// TimestampLayout matches the `YYYY-MM-DD HH:MM:SS` format persisted in the data file
const TimestampLayout = "2006-01-02 15:04:05"

// MediaRecord is a single drone photo or video pinned to a location on the map.
// Seeded records have no file on disk so Filepath is nil and serialises as null.
type MediaRecord struct {
	ID          int       `json:"id"`
	Type        MediaType `json:"type"`
	Title       string    `json:"title"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Timestamp   string    `json:"timestamp"`
	Altitude    int       `json:"altitude"`
	Description string    `json:"description"`
	Filepath    *string   `json:"filepath"`
}

// HasFile reports whether the record points at a file that exists on disk
func (m MediaRecord) HasFile() bool {
	if m.Filepath == nil || *m.Filepath == "" {
		return false
	}
	_, err := os.Stat(*m.Filepath)
	return err == nil
}

func (m MediaRecord) IsVideo() bool {
	return m.Type == Video
}

// Path returns the file path or an empty string for seed records
func (m MediaRecord) Path() string {
	if m.Filepath == nil {
		return ""
	}
	return *m.Filepath
}

func MediaTypeForExtension(ext string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg", "png", "gif":
		return Image, true
	case "mp4", "mov", "avi", "webm":
		return Video, true
	}
	return "", false
}

// StringPtr is a small helper for building records with a file path
func StringPtr(s string) *string {
	return &s
}
