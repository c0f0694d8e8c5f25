package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus-crane/dronemap/db"
	"github.com/marcus-crane/dronemap/migrations"
)

func setupManager(t *testing.T) (*Manager, *db.SqliteStore) {
	t.Helper()
	store, err := db.NewSqliteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.ApplyMigrations(migrations.FS()))
	t.Cleanup(func() {
		store.Close()
	})
	return NewManager(store, "test-secret", time.Hour), store
}

func requestWithCookies(cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

func TestManager_SaveThenLoad(t *testing.T) {
	m, _ := setupManager(t)

	id, state := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, id)
	assert.False(t, state.Viewing())

	state = state.Apply(OpenStory{ID: 2, Index: 1}, LoginSucceeded{})
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, id, state))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	gotID, got := m.Load(requestWithCookies(cookies))
	assert.Equal(t, id, gotID)
	require.True(t, got.Viewing())
	assert.Equal(t, 2, *got.ViewingID)
	assert.True(t, got.Admin)
}

func TestManager_RejectsTamperedCookie(t *testing.T) {
	m, _ := setupManager(t)
	id, state := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, id, state.Apply(LoginSucceeded{})))

	forged := &http.Cookie{Name: CookieName, Value: id + ".deadbeef"}
	gotID, got := m.Load(requestWithCookies([]*http.Cookie{forged}))
	assert.NotEqual(t, id, gotID)
	assert.False(t, got.Admin)

	// A validly signed cookie from another secret is also refused
	other := NewManager(nil, "other-secret", time.Hour)
	foreign := &http.Cookie{Name: CookieName, Value: other.cookieValue(id)}
	gotID, got = m.Load(requestWithCookies([]*http.Cookie{foreign}))
	assert.NotEqual(t, id, gotID)
	assert.False(t, got.Admin)
}

func TestManager_ExpiredSessionsStartFresh(t *testing.T) {
	m, _ := setupManager(t)
	id, state := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	rec := httptest.NewRecorder()
	require.NoError(t, m.Save(rec, id, state.Apply(LoginSucceeded{})))

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	gotID, got := m.Load(requestWithCookies(rec.Result().Cookies()))
	assert.NotEqual(t, id, gotID)
	assert.False(t, got.Admin)

	purged, err := m.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestManager_VerifyMalformedValues(t *testing.T) {
	t.Parallel()
	m := NewManager(nil, "secret", time.Hour)
	for _, v := range []string{"", ".", "abc", "abc.", ".abc"} {
		_, ok := m.verify(v)
		assert.False(t, ok, v)
	}
	id, ok := m.verify(m.cookieValue("abc-123"))
	require.True(t, ok)
	assert.Equal(t, "abc-123", id)
}
