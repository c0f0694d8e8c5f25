package db

import (
	"embed"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/marcus-crane/dronemap/models"

	_ "modernc.org/sqlite"
)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite only allows a single writer and in-memory databases are per connection
	db.SetMaxOpenConns(1)
	slog.With(slog.String("dsn", dsn)).Debug("Initialised DB connection")
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations(migrations embed.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

func (s *SqliteStore) GetSession(id string) (models.Session, error) {
	sess := models.Session{}
	err := s.DB.Get(&sess, "SELECT id, state, created_at, updated_at, expires_at FROM sessions WHERE id = ?", id)
	if err != nil {
		return sess, err
	}
	return sess, nil
}

func (s *SqliteStore) UpsertSession(sess models.Session) error {
	query := `
	INSERT INTO sessions (id, state, created_at, updated_at, expires_at)
	VALUES (:id, :state, :created_at, :updated_at, :expires_at)
	ON CONFLICT (id) DO UPDATE SET
	state = excluded.state,
	updated_at = excluded.updated_at,
	expires_at = excluded.expires_at
	`
	_, err := s.DB.NamedExec(query, sess)
	return err
}

func (s *SqliteStore) DeleteExpiredSessions(now int64) (int64, error) {
	res, err := s.DB.Exec("DELETE FROM sessions WHERE expires_at <= ?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SqliteStore) GetThumbnail(mediaID int) (models.Thumbnail, error) {
	t := models.Thumbnail{}
	err := s.DB.Get(&t, "SELECT media_id, fingerprint, image, dominant_colours, created_at FROM thumbnails WHERE media_id = ?", mediaID)
	if err != nil {
		return t, err
	}
	return t, nil
}

func (s *SqliteStore) UpsertThumbnail(t models.Thumbnail) error {
	query := `
	INSERT INTO thumbnails (media_id, fingerprint, image, dominant_colours, created_at)
	VALUES (:media_id, :fingerprint, :image, :dominant_colours, :created_at)
	ON CONFLICT (media_id) DO UPDATE SET
	fingerprint = excluded.fingerprint,
	image = excluded.image,
	dominant_colours = excluded.dominant_colours,
	created_at = excluded.created_at
	`
	_, err := s.DB.NamedExec(query, t)
	return err
}

// DeleteThumbnailsExcept drops cached thumbnails for any media id not in the list
func (s *SqliteStore) DeleteThumbnailsExcept(mediaIDs []int) (int64, error) {
	if len(mediaIDs) == 0 {
		res, err := s.DB.Exec("DELETE FROM thumbnails")
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}
	query, args, err := sqlx.In("DELETE FROM thumbnails WHERE media_id NOT IN (?)", mediaIDs)
	if err != nil {
		return 0, err
	}
	res, err := s.DB.Exec(s.DB.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
