package session

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	hmacext "github.com/alexellis/hmac/v2"
	"github.com/google/uuid"

	"github.com/marcus-crane/dronemap/db"
	"github.com/marcus-crane/dronemap/models"
)

const CookieName = "dronemap_session"

// Manager maps a signed cookie to viewer state stored in the support database
type Manager struct {
	store  db.Store
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store db.Store, secret string, ttl time.Duration) *Manager {
	if secret == "" {
		slog.Warn("SESSION_SECRET is not set, sessions will not survive a restart")
		secret = uuid.NewString()
	}
	return &Manager{
		store:  store,
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) sign(id string) string {
	return hex.EncodeToString(hmacext.Sign([]byte(id), []byte(m.secret), sha256.New))
}

func (m *Manager) cookieValue(id string) string {
	return id + "." + m.sign(id)
}

// verify returns the session id carried by a cookie value if its signature holds up
func (m *Manager) verify(value string) (string, bool) {
	idx := strings.LastIndex(value, ".")
	if idx <= 0 || idx == len(value)-1 {
		return "", false
	}
	id, signature := value[:idx], value[idx+1:]
	if err := hmacext.Validate([]byte(id), "sha256="+signature, m.secret); err != nil {
		return "", false
	}
	return id, true
}

// Load returns the session for the request. Missing, tampered or expired
// cookies get a brand new idle session.
func (m *Manager) Load(r *http.Request) (string, State) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return m.fresh()
	}
	id, ok := m.verify(cookie.Value)
	if !ok {
		slog.With(slog.String("remote_addr", r.RemoteAddr)).Warn("Rejected session cookie with bad signature")
		return m.fresh()
	}
	sess, err := m.store.GetSession(id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.With(slog.String("error", err.Error())).Error("Failed to load session")
		}
		return m.fresh()
	}
	if sess.ExpiresAt <= m.now().Unix() {
		return m.fresh()
	}
	var state State
	if err := json.Unmarshal([]byte(sess.State), &state); err != nil {
		slog.With(slog.String("error", err.Error())).Warn("Discarding unreadable session state")
		return m.fresh()
	}
	return id, state
}

func (m *Manager) fresh() (string, State) {
	return uuid.NewString(), State{}
}

// Save persists state under id and refreshes the cookie expiry
func (m *Manager) Save(w http.ResponseWriter, id string, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	now := m.now()
	expires := now.Add(m.ttl)
	err = m.store.UpsertSession(models.Session{
		ID:        id,
		State:     string(data),
		CreatedAt: now.Unix(),
		UpdatedAt: now.Unix(),
		ExpiresAt: expires.Unix(),
	})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.cookieValue(id),
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// PurgeExpired removes every session past its expiry
func (m *Manager) PurgeExpired() (int64, error) {
	return m.store.DeleteExpiredSessions(m.now().Unix())
}
