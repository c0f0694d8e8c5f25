package models

// Session is the persisted form of a browser session. State holds the
// JSON encoded viewer state.
type Session struct {
	ID        string `db:"id"`
	State     string `db:"state"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
	ExpiresAt int64  `db:"expires_at"`
}

// Thumbnail is a cached marker image. Fingerprint changes whenever the
// underlying media file does so stale entries can be detected.
type Thumbnail struct {
	MediaID         int                 `db:"media_id"`
	Fingerprint     string              `db:"fingerprint"`
	Image           []byte              `db:"image"`
	DominantColours SerializableColours `db:"dominant_colours"`
	CreatedAt       int64               `db:"created_at"`
}
