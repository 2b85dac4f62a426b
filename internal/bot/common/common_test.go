package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/hymnarium/internal/hymn"
)

func TestCommandArgs(t *testing.T) {
	assert.Equal(t, "12", CommandArgs("/hymn 12"))
	assert.Equal(t, "holy god", CommandArgs("/search   holy god  "))
	assert.Equal(t, "", CommandArgs("/categories"))
	assert.Equal(t, "old", CommandArgs("old"))
}

func TestFormatHymn(t *testing.T) {
	h := hymn.Hymn{
		Number:     "3",
		Title:      "Amazing Grace",
		HymnalYear: hymn.NewVersion,
		Content: hymn.Content{
			Title: "Amazing Grace",
			Lyrics: []hymn.LyricUnit{
				{Kind: hymn.Verse, Ordinal: 1, Text: "Amazing grace"},
				{Kind: hymn.Chorus, Text: "Praise Him"},
			},
		},
		AudioURL:      "/api/media?path=audio/1985/1985/en_003.mp3",
		SheetMusicURL: "/api/media?path=sheet-music/1985/PianoSheet_NewHymnal_en_003.png",
	}

	got := FormatHymn(h, "https://hymns.example.org/")
	want := strings.Join([]string{
		"3. Amazing Grace",
		"new edition (1985)",
		"",
		"1.",
		"Amazing grace",
		"",
		"Chorus:",
		"Praise Him",
		"",
		"audio: https://hymns.example.org/api/media?path=audio/1985/1985/en_003.mp3",
		"sheet music: https://hymns.example.org/api/media?path=sheet-music/1985/PianoSheet_NewHymnal_en_003.png",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatHymnWithoutLyricsOrMedia(t *testing.T) {
	got := FormatHymn(hymn.Hymn{Number: "9", Title: "Nine", HymnalYear: hymn.OldVersion}, "")
	assert.Equal(t, "9. Nine\nold edition (1941)\n\n(no lyrics)", got)
}

func TestFormatResults(t *testing.T) {
	results := []hymn.Metadata{
		{Number: "1", Title: "One"},
		{Number: "2", Title: "Two"},
		{Number: "3", Title: "Three"},
	}
	assert.Equal(t, "1. One\n2. Two\n3. Three", FormatResults(results, 0))
	assert.Equal(t, "1. One\n2. Two\n... and 1 more", FormatResults(results, 2))
	assert.Equal(t, "nothing found", FormatResults(nil, 10))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "/api/media?path=x", AbsoluteURL("", "/api/media?path=x"))
	assert.Equal(t, "https://a.b/api/media?path=x", AbsoluteURL("https://a.b", "/api/media?path=x"))
	assert.Equal(t, "", AbsoluteURL("https://a.b", ""))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, SplitMessage("short", 100))

	text := "aaaa\nbbbb\ncccc"
	chunks := SplitMessage(text, 10)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa\nbbbb", chunks[0])
	assert.Equal(t, "cccc", chunks[1])

	long := strings.Repeat("x", 25)
	chunks = SplitMessage(long, 10)
	assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, chunks)
}
