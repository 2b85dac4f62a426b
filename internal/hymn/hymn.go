package hymn

import (
	"fmt"
	"strings"
)

// Edition identifies one of the two hymnal numbering and text conventions.
type Edition string

const (
	NewVersion Edition = "en-newVersion"
	OldVersion Edition = "en-oldVersion"
)

// ParseEdition accepts the stored tag ("en-newVersion") as well as the short
// forms "new" and "old".
func ParseEdition(s string) (Edition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en-newversion", "new", "newversion", "1985":
		return NewVersion, nil
	case "en-oldversion", "old", "oldversion", "1941":
		return OldVersion, nil
	}
	return "", fmt.Errorf("unknown hymnal edition: %q", s)
}

func (ed Edition) String() string { return string(ed) }

// UnitKind classifies a block of lyric lines.
type UnitKind string

const (
	Verse  UnitKind = "verse"
	Chorus UnitKind = "chorus"
)

// LyricUnit is one verse or chorus. Ordinal counts verses only and is zero
// for chorus units.
type LyricUnit struct {
	Kind    UnitKind `json:"kind"`
	Ordinal int      `json:"ordinal,omitempty"`
	Text    string   `json:"text"`
}

// Badge is the marker shown next to a unit: the verse number, or "C".
func (u LyricUnit) Badge() string {
	if u.Kind == Chorus {
		return "C"
	}
	return fmt.Sprintf("%d", u.Ordinal)
}

// MediaKind selects which asset of a hymn is addressed.
type MediaKind string

const (
	Audio      MediaKind = "audio"
	SheetMusic MediaKind = "sheet-music"
)

// Record is a raw row from the hymn store.
type Record struct {
	Number  string
	Title   string
	Content string
	Edition Edition
}

type Content struct {
	Title  string      `json:"title"`
	Lyrics []LyricUnit `json:"lyrics"`
}

// Hymn is the assembled record handed to readers.
type Hymn struct {
	Number        string  `json:"number"`
	Title         string  `json:"title"`
	HymnalYear    Edition `json:"hymnalYear"`
	Content       Content `json:"content"`
	AudioURL      string  `json:"audioUrl,omitempty"`
	SheetMusicURL string  `json:"sheetMusicUrl,omitempty"`
}

// Metadata is a search or listing row.
type Metadata struct {
	Number     string  `json:"number"`
	Title      string  `json:"title"`
	HymnalYear Edition `json:"hymnalYear"`
}

// NormalizeNumber trims whitespace and leading zeros ("007" -> "7").
func NormalizeNumber(number string) string {
	n := strings.TrimLeft(strings.TrimSpace(number), "0")
	if n == "" && strings.TrimSpace(number) != "" {
		return "0"
	}
	return n
}
