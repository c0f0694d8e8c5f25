package routes

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/marcus-crane/dronemap/models"
	"github.com/marcus-crane/dronemap/session"
	"github.com/marcus-crane/dronemap/store"
)

const (
	defaultCenterLat = 34.0522
	defaultCenterLon = -118.2437
	quickViewCount   = 6
)

//go:embed templates/*.html
var templateFiles embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"truncate": truncate,
}).ParseFS(templateFiles, "templates/*.html"))

// truncate cuts s to at most n characters
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Marker variants, matching the CSS classes in the map page
const (
	markerImageThumb = "image-thumb"
	markerVideoThumb = "video-thumb"
	markerVideo      = "video"
	markerImage      = "image"
)

type markerView struct {
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Variant string  `json:"variant"`
	Thumb   string  `json:"thumb,omitempty"`
}

type cardView struct {
	Record   models.MediaRecord
	Date     string
	Badge    string
	HasThumb bool
	Accent   template.CSS
}

type indexPage struct {
	Flash        *session.Flash
	State        session.State
	LoginEnabled bool
	CenterLat    float64
	CenterLon    float64
	Markers      []markerView
	Cards        []cardView
	QuickView    []cardView
	Stats        store.Stats
}

type storyPage struct {
	Flash     *session.Flash
	Record    models.MediaRecord
	Kind      string
	LoadError string
	Icon      string
}

func mapCenter(records []models.MediaRecord) (float64, float64) {
	if len(records) == 0 {
		return defaultCenterLat, defaultCenterLon
	}
	var lat, lon float64
	for _, r := range records {
		lat += r.Lat
		lon += r.Lon
	}
	n := float64(len(records))
	return lat / n, lon / n
}

func (s *Server) buildIndex(r *http.Request, state session.State, flash *session.Flash) indexPage {
	records := s.Library.All()
	page := indexPage{
		Flash:        flash,
		State:        state,
		LoginEnabled: s.Auth.Enabled(),
		Stats:        s.Library.Stats(),
	}
	page.CenterLat, page.CenterLon = mapCenter(records)

	for _, rec := range records {
		marker := markerView{ID: rec.ID, Title: rec.Title, Lat: rec.Lat, Lon: rec.Lon}
		card := cardView{Record: rec, Badge: "PHOTO"}
		if len(rec.Timestamp) >= 10 {
			card.Date = rec.Timestamp[:10]
		}
		if rec.IsVideo() {
			card.Badge = "VIDEO"
		}

		thumb, ok := s.Thumbnails.ForRecord(r.Context(), rec)
		switch {
		case ok && rec.IsVideo():
			marker.Variant = markerVideoThumb
			marker.Thumb = thumb.DataURI()
		case ok:
			marker.Variant = markerImageThumb
			marker.Thumb = thumb.DataURI()
		case rec.IsVideo():
			marker.Variant = markerVideo
		default:
			marker.Variant = markerImage
		}
		if ok {
			card.HasThumb = !rec.IsVideo()
			if len(thumb.DominantColours) > 0 {
				card.Accent = template.CSS(thumb.DominantColours.Primary("#f8f9fa"))
			}
		}

		page.Markers = append(page.Markers, marker)
		page.Cards = append(page.Cards, card)
	}
	if len(page.Cards) > quickViewCount {
		page.QuickView = page.Cards[:quickViewCount]
	} else {
		page.QuickView = page.Cards
	}
	return page
}

// buildStory prepares the viewer for rec. Records without a file render a
// placeholder card; a file that exists but can't be opened shows an inline
// error instead of the media.
func buildStory(rec models.MediaRecord, flash *session.Flash) storyPage {
	page := storyPage{Flash: flash, Record: rec, Icon: "📷"}
	label := "image"
	if rec.IsVideo() {
		page.Icon = "🎬"
		label = "video"
	}
	if !rec.HasFile() {
		return page
	}
	f, err := os.Open(rec.Path())
	if err != nil {
		page.LoadError = fmt.Sprintf("Error loading %s: %s", label, err)
		return page
	}
	f.Close()
	page.Kind = label
	return page
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.With(slog.String("template", name), slog.String("error", err.Error())).Error("Failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	id, state := s.Sessions.Load(r)

	if raw := r.URL.Query().Get("story_id"); raw != "" {
		if storyID, err := strconv.Atoi(raw); err == nil {
			state = s.openStory(state, storyID)
		}
	}

	var story *models.MediaRecord
	if state.Viewing() {
		if rec, ok := s.Library.Get(*state.ViewingID); ok {
			story = &rec
		} else {
			state = state.Apply(session.CloseStory{})
		}
	}

	state, flash := state.TakeFlash()
	if err := s.Sessions.Save(w, id, state); err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to save session")
	}

	if story != nil {
		s.render(w, "story.html", buildStory(*story, flash))
		return
	}
	s.render(w, "index.html", s.buildIndex(r, state, flash))
}
