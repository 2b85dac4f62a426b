package media

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/sukalov/hymnarium/internal/hymn"
)

/*
Storage layout. These paths match objects already in the bucket and must not
change:

	audio, new hymnal:  audio/1985/1985/en_XXX.mp3
	audio, old hymnal:  audio/1985/1941/XXX.mp3
	sheet, new hymnal:  sheet-music/1985/PianoSheet_NewHymnal_en_XXX[_N].png
	sheet, old hymnal:  none
*/

// MaxSheetPages is the highest numbered sheet page probed.
const MaxSheetPages = 5

// ProxyPath is the route that serves objects through the signing proxy.
const ProxyPath = "/api/media"

// FormatNumber left-pads a hymn number with zeros to three characters.
func FormatNumber(number string) string {
	if n := utf8.RuneCountInString(number); n < 3 {
		return strings.Repeat("0", 3-n) + number
	}
	return number
}

func fileName(number string, edition hymn.Edition, kind hymn.MediaKind, page int) string {
	num := FormatNumber(number)
	if kind == hymn.Audio {
		if edition == hymn.OldVersion {
			return num + ".mp3"
		}
		return "en_" + num + ".mp3"
	}
	suffix := ""
	if page > 0 {
		suffix = fmt.Sprintf("_%d", page)
	}
	return "PianoSheet_NewHymnal_en_" + num + suffix + ".png"
}

func directory(edition hymn.Edition, kind hymn.MediaKind) string {
	if kind == hymn.Audio {
		if edition == hymn.OldVersion {
			return "audio/1985/1941"
		}
		return "audio/1985/1985"
	}
	return "sheet-music/1985"
}

// Locate derives the storage key of a media object. page is ignored for
// audio and means "no page suffix" when zero. The boolean is false when the
// edition has no such media (sheet music of the old hymnal).
func Locate(number string, edition hymn.Edition, kind hymn.MediaKind, page int) (string, bool) {
	if kind == hymn.SheetMusic && edition == hymn.OldVersion {
		return "", false
	}
	if kind != hymn.Audio && kind != hymn.SheetMusic {
		return "", false
	}
	return directory(edition, kind) + "/" + fileName(number, edition, kind, page), true
}

// ProxyURL is the URL under which the media proxy serves key.
func ProxyURL(key string) string {
	return ProxyPath + "?path=" + key
}

// Prober reports whether an object exists. Failures count as absent.
type Prober interface {
	Exists(ctx context.Context, key string) bool
}

// SheetMusicPages returns the keys of the sheet music images of a hymn: the
// unsuffixed image if present, then pages 1..MaxSheetPages up to the first
// missing page. A gap hides every later page.
//
// All candidates are probed concurrently; the result is the same as probing
// them one by one and stopping at the first miss.
func SheetMusicPages(ctx context.Context, p Prober, number string, edition hymn.Edition) []string {
	if _, ok := Locate(number, edition, hymn.SheetMusic, 0); !ok {
		return nil
	}

	keys := make([]string, MaxSheetPages+1)
	found := make([]bool, MaxSheetPages+1)
	for page := range keys {
		keys[page], _ = Locate(number, edition, hymn.SheetMusic, page)
	}

	var g errgroup.Group
	for i := range keys {
		g.Go(func() error {
			found[i] = p.Exists(ctx, keys[i])
			return nil
		})
	}
	_ = g.Wait()

	var pages []string
	if found[0] {
		pages = append(pages, keys[0])
	}
	for page := 1; page <= MaxSheetPages; page++ {
		if !found[page] {
			break
		}
		pages = append(pages, keys[page])
	}
	return pages
}
