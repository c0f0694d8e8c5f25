package notify

import (
	"fmt"
	"log/slog"

	"github.com/gregdel/pushover"

	"github.com/marcus-crane/dronemap/models"
)

// Notifier sends a push message to the site owner whenever media is uploaded.
// A Notifier without credentials does nothing.
type Notifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
}

func New(token, recipient string) *Notifier {
	if token == "" || recipient == "" {
		slog.Debug("Pushover credentials not set, upload notifications disabled")
		return &Notifier{}
	}
	return &Notifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(recipient),
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.app != nil
}

func uploadMessage(record models.MediaRecord) *pushover.Message {
	return &pushover.Message{
		Title: fmt.Sprintf("New %s uploaded", record.Type),
		Message: fmt.Sprintf(
			"%s\n%.4f, %.4f at %dm",
			record.Title, record.Lat, record.Lon, record.Altitude,
		),
	}
}

// MediaUploaded is best effort, failures are only logged
func (n *Notifier) MediaUploaded(record models.MediaRecord) {
	if !n.Enabled() {
		return
	}
	_, err := n.app.SendMessage(uploadMessage(record), n.recipient)
	if err != nil {
		slog.With(slog.String("error", err.Error())).
			With(slog.Int("media_id", record.ID)).
			Error("Failed to send upload notification")
	}
}
