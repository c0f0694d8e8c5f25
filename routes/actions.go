package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/marcus-crane/dronemap/resolver"
	"github.com/marcus-crane/dronemap/session"
	"github.com/marcus-crane/dronemap/upload"
)

const maxUploadSize = 512 << 20

// act loads the caller's session, lets fn derive the next state, persists
// it and redirects back to the page
func (s *Server) act(w http.ResponseWriter, r *http.Request, fn func(session.State) session.State) {
	id, state := s.Sessions.Load(r)
	next := fn(state)
	if err := s.Sessions.Save(w, id, next); err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to save session")
		http.Error(w, "failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// openStory returns the state viewing the record with the given id, or
// flashes an error when it doesn't exist
func (s *Server) openStory(state session.State, id int) session.State {
	idx := s.Library.Index(id)
	if idx < 0 {
		return state.Apply(session.SetFlash{Kind: session.FlashError, Text: "That story could not be found"})
	}
	return state.Apply(session.OpenStory{ID: id, Index: idx})
}

func (s *Server) click(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(state session.State) session.State {
		lat, lon, ok := parseCoordinates(r, "lat", "lng")
		if !ok {
			return state
		}
		match, found := resolver.Resolve(lat, lon, s.Library.All(), resolver.ClickTolerance, nil)
		if !found {
			return state
		}
		return state.Apply(session.OpenStory{ID: match.Record.ID, Index: match.Index})
	})
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(state session.State) session.State {
		id, err := strconv.Atoi(r.FormValue("id"))
		if err != nil {
			return state
		}
		return s.openStory(state, id)
	})
}

func (s *Server) close(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(state session.State) session.State {
		return state.Apply(session.CloseStory{})
	})
}

func (s *Server) toggleLogin(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(state session.State) session.State {
		return state.Apply(session.ToggleLogin{})
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(state session.State) session.State {
		if s.Auth.Check(r.FormValue("username"), r.FormValue("password")) {
			slog.With(slog.String("remote_addr", r.RemoteAddr)).Info("Admin logged in")
			return state.Apply(session.LoginSucceeded{})
		}
		slog.With(slog.String("remote_addr", r.RemoteAddr)).Warn("Failed admin login")
		return state.Apply(session.LoginFailed{})
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(state session.State) session.State {
		return state.Apply(session.Logout{})
	})
}

// uploadForm reads the multipart submission. A missing file leaves
// Form.File nil so the upload service can report it.
func uploadForm(r *http.Request) (upload.Form, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return upload.Form{}, noop, err
	}
	form := upload.Form{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Lat:         r.FormValue("lat"),
		Lon:         r.FormValue("lon"),
		Altitude:    r.FormValue("altitude"),
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return form, noop, nil
		}
		return form, noop, err
	}
	form.File = file
	form.Filename = header.Filename
	return form, func() { file.Close() }, nil
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	s.act(w, r, func(state session.State) session.State {
		if !state.Admin {
			return state.Apply(session.SetFlash{Kind: session.FlashError, Text: "Please log in to upload media"})
		}
		form, cleanup, err := uploadForm(r)
		defer cleanup()
		if err != nil {
			slog.With(slog.String("error", err.Error())).Warn("Unreadable upload form")
			return state.Apply(session.SetFlash{Kind: session.FlashError, Text: "The upload could not be read, it may be too large"})
		}
		record, err := s.Uploads.Upload(r.Context(), form)
		switch {
		case err == nil:
			return state.Apply(session.SetFlash{
				Kind: session.FlashSuccess,
				Text: fmt.Sprintf("Successfully uploaded %s: %s", record.Type, record.Title),
			})
		case upload.IsValidation(err):
			return state.Apply(session.SetFlash{Kind: session.FlashError, Text: err.Error()})
		default:
			slog.With(slog.String("error", err.Error())).Error("Upload failed")
			return state.Apply(session.SetFlash{Kind: session.FlashError, Text: fmt.Sprintf("Failed to save media: %s", err)})
		}
	})
}
