package jobs

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type SessionPurger interface {
	PurgeExpired() (int64, error)
}

type ThumbnailPruner interface {
	DeleteThumbnailsExcept(mediaIDs []int) (int64, error)
}

// MediaIDs lists the ids of every record currently in the collection
type MediaIDs func() []int

func PurgeSessions(sessions SessionPurger) {
	removed, err := sessions.PurgeExpired()
	if err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to purge expired sessions")
		return
	}
	if removed > 0 {
		slog.With(slog.Int64("removed", removed)).Info("Purged expired sessions")
	}
}

// PruneThumbnails drops cached thumbnails belonging to records that no longer exist
func PruneThumbnails(thumbnails ThumbnailPruner, ids MediaIDs) {
	removed, err := thumbnails.DeleteThumbnailsExcept(ids())
	if err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to prune cached thumbnails")
		return
	}
	if removed > 0 {
		slog.With(slog.Int64("removed", removed)).Info("Pruned orphaned thumbnails")
	}
}

func SetupInBackground(sessions SessionPurger, thumbnails ThumbnailPruner, ids MediaIDs) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)

	s.Every(1).Hour().Do(PurgeSessions, sessions)
	s.Every(6).Hours().Do(PruneThumbnails, thumbnails, ids)

	slog.Info("Jobs scheduled. Scheduler not running yet.")

	return s
}
