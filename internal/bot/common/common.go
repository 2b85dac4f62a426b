package common

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sukalov/hymnarium/internal/hymn"
)

// MaxMessageLength is the Telegram limit for one text message.
const MaxMessageLength = 4096

const HelpText = `hymnarium

/hymn <number> - lyrics, audio and sheet music
/search <words or number> - find hymns
/categories - list thematic categories
/category <name> - hymns in a category
/edition [new|old] - show or switch the hymnal edition`

// CommandArgs returns the trimmed text after the command.
func CommandArgs(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	_, rest, _ := strings.Cut(text, " ")
	return strings.TrimSpace(rest)
}

// EditionLabel is the reader-facing name of an edition.
func EditionLabel(ed hymn.Edition) string {
	switch ed {
	case hymn.NewVersion:
		return "new edition (1985)"
	case hymn.OldVersion:
		return "old edition (1941)"
	}
	return string(ed)
}

// AbsoluteURL joins a relative media link onto base. Empty base keeps the
// link as is.
func AbsoluteURL(base, link string) string {
	if base == "" || link == "" || !strings.HasPrefix(link, "/") {
		return link
	}
	return strings.TrimRight(base, "/") + link
}

// FormatHymn renders an assembled hymn as plain text with a badge per unit.
func FormatHymn(h hymn.Hymn, baseURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s. %s\n", h.Number, h.Title)
	fmt.Fprintf(&sb, "%s\n", EditionLabel(h.HymnalYear))

	for _, unit := range h.Content.Lyrics {
		sb.WriteString("\n")
		if unit.Kind == hymn.Chorus {
			sb.WriteString("Chorus:\n")
		} else {
			fmt.Fprintf(&sb, "%s.\n", unit.Badge())
		}
		sb.WriteString(unit.Text)
		sb.WriteString("\n")
	}
	if len(h.Content.Lyrics) == 0 {
		sb.WriteString("\n(no lyrics)\n")
	}

	if h.AudioURL != "" || h.SheetMusicURL != "" {
		sb.WriteString("\n")
	}
	if h.AudioURL != "" {
		fmt.Fprintf(&sb, "audio: %s\n", AbsoluteURL(baseURL, h.AudioURL))
	}
	if h.SheetMusicURL != "" {
		fmt.Fprintf(&sb, "sheet music: %s\n", AbsoluteURL(baseURL, h.SheetMusicURL))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatResults renders a hymn listing, at most limit rows.
func FormatResults(results []hymn.Metadata, limit int) string {
	if len(results) == 0 {
		return "nothing found"
	}
	var sb strings.Builder
	for i, m := range results {
		if limit > 0 && i == limit {
			fmt.Fprintf(&sb, "... and %d more", len(results)-limit)
			break
		}
		fmt.Fprintf(&sb, "%s. %s\n", m.Number, m.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func FormatCategories(categories []string) string {
	if len(categories) == 0 {
		return "no categories"
	}
	return "categories:\n\n" + strings.Join(categories, "\n")
}

// SplitMessage breaks text into chunks under limit runes, preferring
// paragraph and then line boundaries.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimRight(current.String(), "\n"))
			current.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
		}
		if utf8.RuneCountInString(current.String())+utf8.RuneCountInString(line) > limit {
			flush()
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}
