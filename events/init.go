package events

import (
	"encoding/json"
	"fmt"

	"github.com/r3labs/sse/v2"

	"github.com/marcus-crane/dronemap/models"
)

// MediaStream carries a message for every newly added record
const MediaStream = "media"

type Broker struct {
	Server *sse.Server
}

func New() *Broker {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(MediaStream)
	return &Broker{Server: server}
}

// PublishMedia tells connected map pages that a record was added
func (b *Broker) PublishMedia(record models.MediaRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode media event: %w", err)
	}
	b.Server.Publish(MediaStream, &sse.Event{
		Event: []byte("media"),
		Data:  data,
	})
	return nil
}

func (b *Broker) Close() {
	b.Server.Close()
}
