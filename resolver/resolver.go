package resolver

import (
	"math"
	"sort"

	"github.com/marcus-crane/dronemap/models"
)

const (
	// ClickTolerance is how far (in decimal degrees) a marker click may land
	// from a record and still open it
	ClickTolerance = 0.02
	// ExactLocationTolerance is used when looking a record up by its own
	// coordinates rather than by a click
	ExactLocationTolerance = 0.001
)

type Match struct {
	Record   models.MediaRecord
	Index    int
	Distance float64
	HasFile  bool
}

// FileCheck reports whether a record has media that can actually be shown
type FileCheck func(models.MediaRecord) bool

// Distance is plain euclidean distance in coordinate space. It is only
// used to compare nearby points so no projection is applied.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return math.Sqrt(math.Pow(lat1-lat2, 2) + math.Pow(lon1-lon2, 2))
}

// Resolve picks the record a click most likely refers to. Records closer than
// tolerance are candidates; any candidate with a file on disk beats one
// without, and within the same tier the closest wins.
func Resolve(lat, lon float64, records []models.MediaRecord, tolerance float64, hasFile FileCheck) (Match, bool) {
	if hasFile == nil {
		hasFile = models.MediaRecord.HasFile
	}
	candidates := []Match{}
	for idx, r := range records {
		d := Distance(r.Lat, r.Lon, lat, lon)
		if d < tolerance {
			candidates = append(candidates, Match{
				Record:   r,
				Index:    idx,
				Distance: d,
				HasFile:  hasFile(r),
			})
		}
	}
	if len(candidates) == 0 {
		return Match{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].HasFile != candidates[j].HasFile {
			return candidates[i].HasFile
		}
		return candidates[i].Distance < candidates[j].Distance
	})
	return candidates[0], true
}

// FindByLocation returns the first record whose coordinates are each within
// tolerance of the given point
func FindByLocation(lat, lon float64, records []models.MediaRecord, tolerance float64) (Match, bool) {
	for idx, r := range records {
		if math.Abs(r.Lat-lat) < tolerance && math.Abs(r.Lon-lon) < tolerance {
			return Match{
				Record:   r,
				Index:    idx,
				Distance: Distance(r.Lat, r.Lon, lat, lon),
			}, true
		}
	}
	return Match{}, false
}
