package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marcus-crane/dronemap/models"
)

func TestUploadMessage(t *testing.T) {
	t.Parallel()
	msg := uploadMessage(models.MediaRecord{
		ID:       3,
		Type:     models.Video,
		Title:    "Harbour Sunrise",
		Lat:      34.0195,
		Lon:      -118.4912,
		Altitude: 150,
	})
	assert.Equal(t, "New video uploaded", msg.Title)
	assert.Equal(t, "Harbour Sunrise\n34.0195, -118.4912 at 150m", msg.Message)
}

func TestNotifierWithoutCredentialsIsNoop(t *testing.T) {
	t.Parallel()
	for _, n := range []*Notifier{New("", ""), New("token", ""), New("", "user"), nil} {
		assert.False(t, n.Enabled())
		assert.NotPanics(t, func() { n.MediaUploaded(models.MediaRecord{ID: 1}) })
	}
}
