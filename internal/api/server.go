package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/logger"
	"github.com/sukalov/hymnarium/internal/media"
	"github.com/sukalov/hymnarium/internal/utils/e"
)

// HymnService is the hymn-assembly workflow served over HTTP.
type HymnService interface {
	GetHymn(ctx context.Context, number string, edition hymn.Edition) (hymn.Hymn, error)
	SheetMusicURLs(ctx context.Context, number string, edition hymn.Edition) []string
	Search(ctx context.Context, query string, edition hymn.Edition) ([]hymn.Metadata, error)
	HymnsByCategory(ctx context.Context, category string, edition hymn.Edition) ([]hymn.Metadata, error)
	Categories(ctx context.Context, edition hymn.Edition) ([]string, error)
}

// MediaFetcher retrieves objects from the media bucket.
type MediaFetcher interface {
	Ready() error
	Fetch(ctx context.Context, key, rangeHeader string) (*media.Object, error)
}

// Server exposes the hymnal JSON API and the media proxy.
type Server struct {
	hymns  HymnService
	media  MediaFetcher
	server *http.Server
}

func NewServer(addr string, hymns HymnService, fetcher MediaFetcher) *Server {
	s := &Server{hymns: hymns, media: fetcher}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/hymn/{number}", s.handleHymn)
	mux.HandleFunc("GET /api/hymn/{number}/sheets", s.handleSheets)
	mux.HandleFunc("GET /api/hymns/search", s.handleSearch)
	mux.HandleFunc("GET /api/hymns/category/{category}", s.handleCategory)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET "+media.ProxyPath, s.handleMedia)
	return requestLogging(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	logger.Info("api server listening", "address", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHymn(w http.ResponseWriter, r *http.Request) {
	edition, ok := requireEdition(w, r)
	if !ok {
		return
	}
	number := strings.TrimSpace(r.PathValue("number"))
	if number == "" {
		writeError(w, r, e.Mark(e.ErrInvalidInput, "invalid hymn number", nil))
		return
	}

	h, err := s.hymns.GetHymn(r.Context(), number, edition)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	edition, ok := requireEdition(w, r)
	if !ok {
		return
	}
	if err := s.media.Ready(); err != nil {
		writeError(w, r, err)
		return
	}
	urls := s.hymns.SheetMusicURLs(r.Context(), r.PathValue("number"), edition)
	if urls == nil {
		urls = []string{}
	}
	writeJSON(w, http.StatusOK, urls)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	edition, ok := requireEdition(w, r)
	if !ok {
		return
	}
	results, err := s.hymns.Search(r.Context(), r.URL.Query().Get("q"), edition)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	edition, ok := requireEdition(w, r)
	if !ok {
		return
	}
	results, err := s.hymns.HymnsByCategory(r.Context(), r.PathValue("category"), edition)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	edition, ok := requireEdition(w, r)
	if !ok {
		return
	}
	categories, err := s.hymns.Categories(r.Context(), edition)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// handleMedia proxies an object from the bucket. Range is forwarded as is.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(strings.TrimSpace(r.URL.Query().Get("path")), "/")
	if key == "" {
		writeError(w, r, e.Mark(e.ErrInvalidInput, "path parameter is required", nil))
		return
	}

	obj, err := s.media.Fetch(r.Context(), key, r.Header.Get("Range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := w.Header()
	h.Set("Content-Type", contentType)
	if obj.ContentLength >= 0 {
		h.Set("Content-Length", strconv.FormatInt(obj.ContentLength, 10))
	}
	if obj.ContentRange != "" {
		h.Set("Content-Range", obj.ContentRange)
	}
	if obj.AcceptRanges != "" {
		h.Set("Accept-Ranges", obj.AcceptRanges)
	}
	h.Set("Cache-Control", "public, max-age=31536000")

	status := obj.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if _, err := io.Copy(w, obj.Body); err != nil {
		logger.Debug("media copy interrupted", "key", key, "error", err.Error())
	}
}

func requireEdition(w http.ResponseWriter, r *http.Request) (hymn.Edition, bool) {
	raw := r.URL.Query().Get("hymnalYear")
	if raw == "" {
		writeError(w, r, e.Mark(e.ErrInvalidInput, "hymnalYear is required", nil))
		return "", false
	}
	edition, err := hymn.ParseEdition(raw)
	if err != nil {
		writeError(w, r, e.Mark(e.ErrInvalidInput, "invalid hymnalYear", err))
		return "", false
	}
	return edition, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := http.StatusText(status)
	switch status {
	case http.StatusBadRequest, http.StatusNotFound:
		message = err.Error()
	case http.StatusInternalServerError, http.StatusBadGateway:
		logger.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path, "status", status, "error", err.Error())
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
