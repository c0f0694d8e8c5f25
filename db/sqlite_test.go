package db

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/dronemap/migrations"
	"github.com/marcus-crane/dronemap/models"
)

func setupTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	s, err := NewSqliteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations(migrations.FS()))
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestSqliteStore_SessionLifecycle(t *testing.T) {
	s := setupTestStore(t)

	sess := models.Session{ID: "abc", State: `{"admin":false}`, CreatedAt: 10, UpdatedAt: 10, ExpiresAt: 100}
	require.NoError(t, s.UpsertSession(sess))

	got, err := s.GetSession("abc")
	require.NoError(t, err)
	if !cmp.Equal(sess, got) {
		t.Error(cmp.Diff(sess, got))
	}

	// Updates keep the original creation time
	require.NoError(t, s.UpsertSession(models.Session{ID: "abc", State: `{"admin":true}`, CreatedAt: 50, UpdatedAt: 50, ExpiresAt: 500}))
	got, err = s.GetSession("abc")
	require.NoError(t, err)
	assert.Equal(t, `{"admin":true}`, got.State)
	assert.Equal(t, int64(10), got.CreatedAt)
	assert.Equal(t, int64(500), got.ExpiresAt)

	require.NoError(t, s.UpsertSession(models.Session{ID: "old", State: "{}", CreatedAt: 1, UpdatedAt: 1, ExpiresAt: 20}))
	deleted, err := s.DeleteExpiredSessions(200)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = s.GetSession("old")
	assert.Error(t, err)
}

func TestSqliteStore_ThumbnailCache(t *testing.T) {
	s := setupTestStore(t)

	for _, id := range []int{1, 2, 3} {
		require.NoError(t, s.UpsertThumbnail(models.Thumbnail{
			MediaID:         id,
			Fingerprint:     "fp",
			Image:           []byte{0xff, 0xd8, byte(id)},
			DominantColours: models.SerializableColours{"#020304", "#6581be"},
			CreatedAt:       1,
		}))
	}

	got, err := s.GetThumbnail(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8, 2}, got.Image)
	assert.Equal(t, models.SerializableColours{"#020304", "#6581be"}, got.DominantColours)

	require.NoError(t, s.UpsertThumbnail(models.Thumbnail{MediaID: 2, Fingerprint: "fp2", Image: []byte{1}, CreatedAt: 2}))
	got, err = s.GetThumbnail(2)
	require.NoError(t, err)
	assert.Equal(t, "fp2", got.Fingerprint)
	assert.Empty(t, got.DominantColours)

	deleted, err := s.DeleteThumbnailsExcept([]int{1, 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	_, err = s.GetThumbnail(2)
	assert.Error(t, err)

	deleted, err = s.DeleteThumbnailsExcept(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestSqliteStore_GetSessionPropagatesErrors(t *testing.T) {
	t.Parallel()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, state, created_at, updated_at, expires_at FROM sessions WHERE id = ?")).
		WithArgs("abc").
		WillReturnError(errors.New("disk I/O error"))

	s := &SqliteStore{DB: sqlx.NewDb(conn, "sqlmock")}
	_, err = s.GetSession("abc")
	assert.EqualError(t, err, "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
