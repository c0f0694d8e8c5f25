package db

import (
	"embed"

	"github.com/marcus-crane/dronemap/models"
)

// Store is the SQLite backed support store. The media collection itself
// lives in the JSON data file, this only holds sessions and cached thumbnails.
type Store interface {
	ApplyMigrations(migrations embed.FS) error
	Close() error

	GetSession(id string) (models.Session, error)
	UpsertSession(s models.Session) error
	DeleteExpiredSessions(now int64) (int64, error)

	GetThumbnail(mediaID int) (models.Thumbnail, error)
	UpsertThumbnail(t models.Thumbnail) error
	DeleteThumbnailsExcept(mediaIDs []int) (int64, error)
}
