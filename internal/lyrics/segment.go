package lyrics

import (
	"regexp"
	"strings"

	"github.com/sukalov/hymnarium/internal/hymn"
)

const (
	chorusMarker   = "chorus:"
	verseSeparator = "\n\n"
)

var verseNumberRegex = regexp.MustCompile(`^\d+\.`)

// Segment splits raw lyric text into verse and chorus units using the rule
// of the given edition. It never fails; empty input yields no units.
func Segment(content string, edition hymn.Edition) []hymn.LyricUnit {
	if edition == hymn.OldVersion {
		return segmentOld(content)
	}
	return segmentNew(content)
}

// segmentOld handles the 1941 hymnal: verses separated by blank lines,
// numbered by position.
func segmentOld(content string) []hymn.LyricUnit {
	var units []hymn.LyricUnit
	for _, piece := range strings.Split(content, verseSeparator) {
		text := strings.TrimSpace(piece)
		if text == "" {
			continue
		}
		units = append(units, hymn.LyricUnit{
			Kind:    hymn.Verse,
			Ordinal: len(units) + 1,
			Text:    text,
		})
	}
	return units
}

// segmenter holds the state of one pass over 1985 hymnal text.
type segmenter struct {
	mode    hymn.UnitKind
	buffer  []string
	ordinal int
	units   []hymn.LyricUnit
}

func (s *segmenter) flush() {
	if len(s.buffer) == 0 {
		return
	}
	unit := hymn.LyricUnit{Kind: s.mode, Text: strings.Join(s.buffer, "\n")}
	if s.mode == hymn.Verse {
		s.ordinal++
		unit.Ordinal = s.ordinal
	}
	s.units = append(s.units, unit)
	s.buffer = nil
}

// segmentNew handles the 1985 hymnal: verses start with "N.", a line
// containing "CHORUS:" opens a chorus that runs until the next numbered line.
// A numbered line always closes the pending verse and starts a new one.
func segmentNew(content string) []hymn.LyricUnit {
	s := &segmenter{mode: hymn.Verse}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.Contains(strings.ToLower(line), chorusMarker):
			s.flush()
			s.mode = hymn.Chorus
			s.buffer = []string{line}
		case verseNumberRegex.MatchString(line):
			if s.mode == hymn.Chorus {
				s.flush()
				s.mode = hymn.Verse
			}
			s.flush()
			s.buffer = []string{line}
		default:
			s.buffer = append(s.buffer, line)
		}
	}

	s.flush()
	return s.units
}
