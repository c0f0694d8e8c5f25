package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/marcus-crane/dronemap/auth"
	"github.com/marcus-crane/dronemap/config"
	"github.com/marcus-crane/dronemap/db"
	"github.com/marcus-crane/dronemap/events"
	"github.com/marcus-crane/dronemap/exif"
	"github.com/marcus-crane/dronemap/jobs"
	"github.com/marcus-crane/dronemap/migrations"
	"github.com/marcus-crane/dronemap/notify"
	"github.com/marcus-crane/dronemap/routes"
	"github.com/marcus-crane/dronemap/session"
	"github.com/marcus-crane/dronemap/store"
	"github.com/marcus-crane/dronemap/thumbnail"
	"github.com/marcus-crane/dronemap/upload"
	"github.com/marcus-crane/dronemap/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Println(err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.GetLogLevel()}))
	slog.SetDefault(logger)

	if utils.GetEnv("RESET_DB", "0") == "1" {
		if err := os.Remove(cfg.Dronemap.DbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.With(slog.String("error", err.Error())).Error("Failed to reset database")
			os.Exit(1)
		}
	}

	database, err := db.NewSqliteStore(cfg.Dronemap.DbPath)
	if err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to open database")
		os.Exit(1)
	}
	defer database.Close()

	if err := database.ApplyMigrations(migrations.FS()); err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to apply migrations")
		os.Exit(1)
	}

	authenticator, err := auth.New(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to configure admin login")
		os.Exit(1)
	}

	library := store.NewLibrary(store.NewFileStore(cfg.Dronemap.DataFile))
	sessions := session.NewManager(database, cfg.Session.Secret, time.Duration(cfg.Session.TTLHours)*time.Hour)

	exifReader := exif.NewReader(cfg.Media.ExiftoolEnabled, "")
	defer exifReader.Close()

	broker := events.New()
	defer broker.Close()

	uploads := upload.NewService(
		library,
		cfg.Dronemap.UploadDir,
		exifReader,
		broker,
		notify.New(cfg.Pushover.Token, cfg.Pushover.Recipient),
	)

	jobScheduler := jobs.SetupInBackground(sessions, database, mediaIDs(library))

	if cfg.Dronemap.BackgroundJobsEnabled {
		jobScheduler.StartAsync()
		slog.Info("Background jobs have started up in the background.")
	} else {
		slog.Info("Background jobs are disabled.")
	}

	router := routes.Register(http.NewServeMux(), &routes.Server{
		Library:    library,
		Sessions:   sessions,
		Auth:       authenticator,
		Thumbnails: thumbnail.NewGenerator(database, thumbnail.NewFFmpeg(cfg.Media.FFmpegPath)),
		Uploads:    uploads,
		Events:     broker,
	}, cfg.Origins())

	slog.With(slog.String("addr", cfg.Dronemap.Addr)).Info("Dronemap is running")

	if err := http.ListenAndServe(cfg.Dronemap.Addr, router); err != nil {
		slog.With(slog.String("error", err.Error())).Error("Server stopped")
		jobScheduler.Stop()
		os.Exit(1)
	}
}

func mediaIDs(library *store.Library) jobs.MediaIDs {
	return func() []int {
		records := library.All()
		ids := make([]int, 0, len(records))
		for _, r := range records {
			ids = append(ids, r.ID)
		}
		return ids
	}
}
