package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/logger"
	"github.com/sukalov/hymnarium/internal/utils/e"
)

const queryTimeout = 5 * time.Second

var numericQueryRegex = regexp.MustCompile(`^\d+$`)

// HymnStore runs the hymnal queries against the hymns, thematic_lists and
// thematic_ambits tables.
type HymnStore struct {
	db *sql.DB
}

func NewHymnStore(database *sql.DB) *HymnStore {
	return &HymnStore{db: database}
}

// GetHymn returns the stored row for number in edition, or ErrNotFound.
func (s *HymnStore) GetHymn(ctx context.Context, number string, edition hymn.Edition) (hymn.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `SELECT number, title, content FROM hymns WHERE number = ? AND hymnal_type = ? LIMIT 1`

	var rec hymn.Record
	var content sql.NullString
	err := s.db.QueryRowContext(ctx, query, number, string(edition)).Scan(&rec.Number, &rec.Title, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return hymn.Record{}, e.Mark(e.ErrNotFound, fmt.Sprintf("hymn %s (%s)", number, edition), nil)
	}
	if err != nil {
		return hymn.Record{}, e.Mark(e.ErrUpstream, "failed to query hymn", err)
	}
	rec.Content = content.String
	rec.Edition = edition
	return rec, nil
}

// Search lists hymns of an edition. An empty query lists everything, an
// all-digit query matches number prefixes, anything else must match every
// word in the title; titles starting with the query rank first.
func (s *HymnStore) Search(ctx context.Context, query string, edition hymn.Edition) ([]hymn.Metadata, error) {
	sqlText, args := buildSearch(query, edition)
	logger.Debug("executing search", "query", query, "edition", edition.String())
	return s.listMetadata(ctx, sqlText, args...)
}

func buildSearch(query string, edition hymn.Edition) (string, []any) {
	trimmed := strings.TrimSpace(query)

	switch {
	case trimmed == "":
		return `SELECT number, title, hymnal_type FROM hymns
			WHERE hymnal_type = ?
			ORDER BY CAST(number AS INTEGER)`, []any{string(edition)}

	case numericQueryRegex.MatchString(trimmed):
		return `SELECT number, title, hymnal_type FROM hymns
			WHERE hymnal_type = ? AND number LIKE ?
			ORDER BY CAST(number AS INTEGER)`, []any{string(edition), trimmed + "%"}
	}

	words := strings.Fields(strings.ToLower(trimmed))
	conditions := make([]string, len(words))
	args := []any{string(edition)}
	for i, word := range words {
		conditions[i] = "LOWER(title) LIKE ?"
		args = append(args, "%"+word+"%")
	}
	args = append(args, strings.ToLower(trimmed)+"%")

	return fmt.Sprintf(`SELECT number, title, hymnal_type FROM hymns
		WHERE hymnal_type = ? AND (%s)
		ORDER BY
			CASE WHEN LOWER(title) LIKE ? THEN 1 ELSE 2 END,
			CAST(number AS INTEGER)`, strings.Join(conditions, " AND ")), args
}

// Categories returns the distinct thematic list names of an edition.
func (s *HymnStore) Categories(ctx context.Context, edition hymn.Edition) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT thematic FROM thematic_lists WHERE hymnal_type = ? ORDER BY thematic`,
		string(edition))
	if err != nil {
		return nil, e.Mark(e.ErrUpstream, "failed to query categories", err)
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var thematic sql.NullString
		if err := rows.Scan(&thematic); err != nil {
			return nil, e.Mark(e.ErrUpstream, "failed to scan category", err)
		}
		if thematic.Valid && thematic.String != "" {
			categories = append(categories, thematic.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, e.Mark(e.ErrUpstream, "error during rows iteration", err)
	}
	return categories, nil
}

// HymnsByCategory lists the hymns whose number falls into one of the
// ranges of the named thematic list.
func (s *HymnStore) HymnsByCategory(ctx context.Context, category string, edition hymn.Edition) ([]hymn.Metadata, error) {
	return s.listMetadata(ctx, `SELECT h.number, h.title, h.hymnal_type
		FROM hymns h
		JOIN thematic_ambits ta
			ON CAST(h.number AS INTEGER) >= ta.start_number
			AND CAST(h.number AS INTEGER) <= ta.end_number
		JOIN thematic_lists tl ON ta.thematic_list_id = tl.id
		WHERE tl.thematic = ? AND h.hymnal_type = ? AND tl.hymnal_type = h.hymnal_type
		ORDER BY CAST(h.number AS INTEGER)`, category, string(edition))
}

func (s *HymnStore) listMetadata(ctx context.Context, query string, args ...any) ([]hymn.Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, e.Mark(e.ErrUpstream, "failed to execute query", err)
	}
	defer rows.Close()

	results := []hymn.Metadata{}
	for rows.Next() {
		var m hymn.Metadata
		var edition string
		if err := rows.Scan(&m.Number, &m.Title, &edition); err != nil {
			logger.Warn("error scanning row", "error", err.Error())
			continue
		}
		m.HymnalYear = hymn.Edition(edition)
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Mark(e.ErrUpstream, "error during rows iteration", err)
	}
	return results, nil
}
