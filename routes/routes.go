package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rs/cors"

	"github.com/marcus-crane/dronemap/auth"
	"github.com/marcus-crane/dronemap/events"
	"github.com/marcus-crane/dronemap/models"
	"github.com/marcus-crane/dronemap/resolver"
	"github.com/marcus-crane/dronemap/session"
	"github.com/marcus-crane/dronemap/store"
	"github.com/marcus-crane/dronemap/thumbnail"
	"github.com/marcus-crane/dronemap/upload"
)

// Server holds everything the HTTP handlers need. Each request loads the
// caller's session, applies at most one action and renders or redirects.
type Server struct {
	Library    *store.Library
	Sessions   *session.Manager
	Auth       *auth.Authenticator
	Thumbnails *thumbnail.Generator
	Uploads    *upload.Service
	Events     *events.Broker
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to encode response")
	}
}

func renderJSONMessage(w http.ResponseWriter, status int, message string) {
	renderJSON(w, status, map[string]string{"message": message})
}

// writeBody sends data and logs a failed write, usually a client that went away
func writeBody(w http.ResponseWriter, data []byte) error {
	if _, err := w.Write(data); err != nil {
		slog.With(slog.String("error", err.Error())).Warn("Failed to write response body")
		return err
	}
	return nil
}

func Register(mux *http.ServeMux, s *Server, allowedOrigins []string) http.Handler {
	mux.HandleFunc("GET /{$}", s.index)

	mux.HandleFunc("POST /actions/click", s.click)
	mux.HandleFunc("POST /actions/open", s.open)
	mux.HandleFunc("POST /actions/close", s.close)
	mux.HandleFunc("POST /actions/toggle-login", s.toggleLogin)
	mux.HandleFunc("POST /actions/login", s.login)
	mux.HandleFunc("POST /actions/logout", s.logout)
	mux.HandleFunc("POST /actions/upload", s.upload)

	mux.HandleFunc("GET /media/{id}", s.media)
	mux.HandleFunc("GET /thumbnails/{id}", s.thumbnail)

	mux.HandleFunc("GET /api/media", s.apiMedia)
	mux.HandleFunc("GET /api/media/resolve", s.apiResolve)
	mux.HandleFunc("GET /api/media/at", s.apiAt)
	mux.HandleFunc("GET /api/stats", s.apiStats)

	if s.Events != nil {
		mux.HandleFunc("GET /events", s.Events.Server.ServeHTTP)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		renderJSONMessage(w, http.StatusOK, "ok")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})

	return c.Handler(mux)
}

// recordFromPath looks up the record named by the {id} path segment
func (s *Server) recordFromPath(r *http.Request) (models.MediaRecord, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return models.MediaRecord{}, false
	}
	return s.Library.Get(id)
}

func (s *Server) media(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recordFromPath(r)
	if !ok || !rec.HasFile() {
		http.NotFound(w, r)
		return
	}
	fingerprint, err := thumbnail.Fingerprint(rec.Path())
	if err == nil {
		w.Header().Set("ETag", `"`+fingerprint+`"`)
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	// ServeFile honours If-None-Match against the ETag above and handles
	// range requests for video seeking
	http.ServeFile(w, r, rec.Path())
}

func (s *Server) thumbnail(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.recordFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	thumb, ok := s.Thumbnails.ForRecord(r.Context(), rec)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=300")
	writeBody(w, thumb.Image)
}

type matchResponse struct {
	Record   models.MediaRecord `json:"record"`
	Index    int                `json:"index"`
	Distance float64            `json:"distance"`
	HasFile  bool               `json:"has_file"`
}

func parseCoordinates(r *http.Request, latKey, lonKey string) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(r.FormValue(latKey), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(r.FormValue(lonKey), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func (s *Server) apiMedia(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, s.Library.All())
}

func (s *Server) apiStats(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, s.Library.Stats())
}

func (s *Server) apiResolve(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoordinates(r, "lat", "lon")
	if !ok {
		renderJSONMessage(w, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}
	match, found := resolver.Resolve(lat, lon, s.Library.All(), resolver.ClickTolerance, nil)
	if !found {
		renderJSONMessage(w, http.StatusNotFound, "No media near that point")
		return
	}
	renderJSON(w, http.StatusOK, matchResponse(match))
}

func (s *Server) apiAt(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseCoordinates(r, "lat", "lon")
	if !ok {
		renderJSONMessage(w, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}
	match, found := resolver.FindByLocation(lat, lon, s.Library.All(), resolver.ExactLocationTolerance)
	if !found {
		renderJSONMessage(w, http.StatusNotFound, "No media at that location")
		return
	}
	match.HasFile = match.Record.HasFile()
	renderJSON(w, http.StatusOK, matchResponse(match))
}
