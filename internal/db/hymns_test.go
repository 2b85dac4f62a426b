package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sukalov/hymnarium/internal/config"
	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/utils/e"
)

const schema = `
CREATE TABLE hymns (
	number TEXT NOT NULL,
	title TEXT NOT NULL,
	content TEXT,
	hymnal_type TEXT NOT NULL,
	category TEXT
);
CREATE TABLE thematic_lists (
	id INTEGER PRIMARY KEY,
	thematic TEXT NOT NULL,
	hymnal_type TEXT NOT NULL
);
CREATE TABLE thematic_ambits (
	id INTEGER PRIMARY KEY,
	thematic_list_id INTEGER NOT NULL,
	start_number INTEGER NOT NULL,
	end_number INTEGER NOT NULL
);
`

func openTestStore(t *testing.T) *HymnStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hymnarium.db")
	database, err := Open(context.Background(), config.Database{Driver: "sqlite", DSN: path, SQLitePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { Close(database) })

	_, err = database.Exec(schema)
	require.NoError(t, err)
	seed(t, database)
	return NewHymnStore(database)
}

func seed(t *testing.T, database *sql.DB) {
	t.Helper()
	hymns := []struct{ number, title, content, edition string }{
		{"1", "Praise to the Lord", "1. Praise to the Lord\nthe Almighty", "en-newVersion"},
		{"2", "Holy, Holy, Holy", "1. Holy holy holy", "en-newVersion"},
		{"10", "Amazing Grace", "1. Amazing grace\nCHORUS:\nPraise", "en-newVersion"},
		{"12", "Grace Greater than Our Sin", "1. Marvelous grace", "en-newVersion"},
		{"21", "Our God, Our Help", "Our God\n\nOur hope", "en-newVersion"},
		{"1", "Old Hundredth", "All people\n\nthat on earth", "en-oldVersion"},
	}
	for _, h := range hymns {
		_, err := database.Exec(`INSERT INTO hymns (number, title, content, hymnal_type) VALUES (?, ?, ?, ?)`,
			h.number, h.title, h.content, h.edition)
		require.NoError(t, err)
	}

	_, err := database.Exec(`INSERT INTO thematic_lists (id, thematic, hymnal_type) VALUES
		(1, 'Worship', 'en-newVersion'),
		(2, 'Grace', 'en-newVersion'),
		(3, 'Worship', 'en-oldVersion'),
		(4, '', 'en-newVersion')`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO thematic_ambits (thematic_list_id, start_number, end_number) VALUES
		(1, 1, 2),
		(2, 10, 12),
		(3, 1, 5)`)
	require.NoError(t, err)
}

func TestGetHymn(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec, err := store.GetHymn(ctx, "10", hymn.NewVersion)
	require.NoError(t, err)
	assert.Equal(t, "10", rec.Number)
	assert.Equal(t, "Amazing Grace", rec.Title)
	assert.Equal(t, "1. Amazing grace\nCHORUS:\nPraise", rec.Content)
	assert.Equal(t, hymn.NewVersion, rec.Edition)

	rec, err = store.GetHymn(ctx, "1", hymn.OldVersion)
	require.NoError(t, err)
	assert.Equal(t, "Old Hundredth", rec.Title)

	_, err = store.GetHymn(ctx, "10", hymn.OldVersion)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func numbers(items []hymn.Metadata) []string {
	out := make([]string, len(items))
	for i, m := range items {
		out[i] = m.Number
	}
	return out
}

func TestSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty lists all in numeric order", "", []string{"1", "2", "10", "12", "21"}},
		{"numeric prefix", "1", []string{"1", "10", "12"}},
		{"numeric with spaces", " 2 ", []string{"2", "21"}},
		{"words must all match", "grace our", []string{"12"}},
		{"title prefix ranks first", "grace", []string{"12", "10"}},
		{"case insensitive", "HOLY", []string{"2"}},
		{"no match", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Search(ctx, tt.query, hymn.NewVersion)
			require.NoError(t, err)
			assert.Equal(t, tt.want, numbers(got))
			for _, m := range got {
				assert.Equal(t, hymn.NewVersion, m.HymnalYear)
			}
		})
	}
}

func TestCategories(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Categories(context.Background(), hymn.NewVersion)
	require.NoError(t, err)
	assert.Equal(t, []string{"Grace", "Worship"}, got)

	got, err = store.Categories(context.Background(), hymn.OldVersion)
	require.NoError(t, err)
	assert.Equal(t, []string{"Worship"}, got)
}

func TestHymnsByCategory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	got, err := store.HymnsByCategory(ctx, "Grace", hymn.NewVersion)
	require.NoError(t, err)
	assert.Equal(t, []string{"10", "12"}, numbers(got))

	got, err = store.HymnsByCategory(ctx, "Worship", hymn.OldVersion)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, numbers(got))

	got, err = store.HymnsByCategory(ctx, "Missing", hymn.NewVersion)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenRequiresDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Database{})
	assert.ErrorIs(t, err, e.ErrConfiguration)
}

func TestBuildSearchArgs(t *testing.T) {
	_, args := buildSearch("Amazing  Grace", hymn.NewVersion)
	assert.Equal(t, []any{"en-newVersion", "%amazing%", "%grace%", "amazing  grace%"}, args)
}
