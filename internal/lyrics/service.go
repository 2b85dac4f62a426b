package lyrics

import (
	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/logger"
)

// Service structures stored lyric text for display.
type Service struct{}

// NewService creates a new lyrics service
func NewService() *Service {
	return &Service{}
}

// Structure segments the content of a stored hymn row.
func (s *Service) Structure(rec hymn.Record) hymn.Content {
	units := Segment(rec.Content, rec.Edition)
	if len(units) == 0 {
		logger.Debug("hymn content produced no lyric units",
			"number", rec.Number, "edition", rec.Edition.String())
	}
	return hymn.Content{Title: rec.Title, Lyrics: units}
}
