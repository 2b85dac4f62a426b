package hymnal

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sukalov/hymnarium/internal/cache"
	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/logger"
	"github.com/sukalov/hymnarium/internal/lyrics"
	"github.com/sukalov/hymnarium/internal/media"
)

// Store is the query collaborator backed by the hymn database.
type Store interface {
	GetHymn(ctx context.Context, number string, edition hymn.Edition) (hymn.Record, error)
	Search(ctx context.Context, query string, edition hymn.Edition) ([]hymn.Metadata, error)
	Categories(ctx context.Context, edition hymn.Edition) ([]string, error)
	HymnsByCategory(ctx context.Context, category string, edition hymn.Edition) ([]hymn.Metadata, error)
}

// Service assembles hymn records for readers.
type Service struct {
	store  Store
	lyrics *lyrics.Service
	cache  *cache.HymnCache
	prober media.Prober
	now    func() time.Time
}

// NewService wires the assembly workflow. cache and prober may be nil.
func NewService(store Store, hymnCache *cache.HymnCache, prober media.Prober) *Service {
	return &Service{
		store:  store,
		lyrics: lyrics.NewService(),
		cache:  hymnCache,
		prober: prober,
		now:    time.Now,
	}
}

// GetHymn returns the assembled hymn: stored row, segmented lyrics and media
// URLs. A missing hymn is reported as e.ErrNotFound.
func (s *Service) GetHymn(ctx context.Context, number string, edition hymn.Edition) (hymn.Hymn, error) {
	number = hymn.NormalizeNumber(number)
	key := cache.Key(edition, number)

	if s.cache != nil {
		if entry, ok := s.cache.Get(ctx, key); ok {
			logger.Debug("hymn served from cache", "key", key)
			return entry.Hymn, nil
		}
	}

	rec, err := s.store.GetHymn(ctx, number, edition)
	if err != nil {
		return hymn.Hymn{}, err
	}

	h := hymn.Hymn{
		Number:     rec.Number,
		Title:      rec.Title,
		HymnalYear: edition,
		Content:    s.lyrics.Structure(rec),
	}
	h.AudioURL, h.SheetMusicURL = mediaURLs(ctx, rec.Number, edition)

	logger.Debug("loaded hymn with media",
		"number", h.Number,
		"edition", edition.String(),
		"title", h.Title,
		"units", len(h.Content.Lyrics),
		"audio_url", h.AudioURL,
		"sheet_music_url", h.SheetMusicURL,
	)

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, h, s.now()); err != nil {
			logger.Warn("failed to cache hymn", "key", key, "error", err.Error())
		}
	}
	return h, nil
}

// mediaURLs derives the audio and sheet music proxy URLs side by side.
// Sheet music is empty for editions without it.
func mediaURLs(ctx context.Context, number string, edition hymn.Edition) (audio, sheet string) {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		if key, ok := media.Locate(number, edition, hymn.Audio, 0); ok {
			audio = media.ProxyURL(key)
		}
		return nil
	})
	g.Go(func() error {
		if key, ok := media.Locate(number, edition, hymn.SheetMusic, 0); ok {
			sheet = media.ProxyURL(key)
		}
		return nil
	})
	_ = g.Wait()
	return audio, sheet
}

// SheetMusicURLs discovers the sheet music pages of a hymn in the object
// store and returns their proxy URLs.
func (s *Service) SheetMusicURLs(ctx context.Context, number string, edition hymn.Edition) []string {
	if s.prober == nil {
		return nil
	}
	keys := media.SheetMusicPages(ctx, s.prober, hymn.NormalizeNumber(number), edition)
	urls := make([]string, len(keys))
	for i, key := range keys {
		urls[i] = media.ProxyURL(key)
	}
	return urls
}

func (s *Service) Search(ctx context.Context, query string, edition hymn.Edition) ([]hymn.Metadata, error) {
	return s.store.Search(ctx, query, edition)
}

func (s *Service) HymnsByCategory(ctx context.Context, category string, edition hymn.Edition) ([]hymn.Metadata, error) {
	return s.store.HymnsByCategory(ctx, category, edition)
}

func (s *Service) Categories(ctx context.Context, edition hymn.Edition) ([]string, error) {
	return s.store.Categories(ctx, edition)
}

// FlushCache drops every cached hymn.
func (s *Service) FlushCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}
