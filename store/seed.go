package store

import "github.com/marcus-crane/dronemap/models"

// Seed returns the sample collection used on first run
func Seed() []models.MediaRecord {
	return []models.MediaRecord{
		{
			ID:          1,
			Type:        models.Image,
			Title:       "Coastal Cliff Aerial",
			Lat:         34.0195,
			Lon:         -118.4912,
			Timestamp:   "2024-12-01 14:32:00",
			Altitude:    120,
			Description: "Stunning aerial view of coastal cliffs at sunset",
		},
		{
			ID:          2,
			Type:        models.Video,
			Title:       "Downtown Flyover",
			Lat:         34.0522,
			Lon:         -118.2437,
			Timestamp:   "2024-12-03 10:15:00",
			Altitude:    200,
			Description: "Cinematic drone flyover of downtown Los Angeles",
		},
	}
}
