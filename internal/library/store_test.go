// Copyright Justin Henderson, 2026. All rights reserved.

package library

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "music.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(isrc string) types.TrackRecord {
	return types.TrackRecord{
		ISRC:                  isrc,
		IsExplicit:            false,
		ExplicitVersionExists: true,
		Title:                 "Song",
		Artist:                "Artist",
		Year:                  2020,
		Version:               "Album Version",
		Duration:              "213",
		ValidISRC:             true,
		FilePath:              "/music/" + isrc + ".flac",
	}
}

func TestOpenCreatesSchema(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenDefaultsDBPath(t *testing.T) {
	// Relative default path; create inside a temp working dir.
	t.Chdir(t.TempDir())

	s, err := Open(types.StoreConfig{})
	require.NoError(t, err)
	defer s.Close()

	exists, err := s.Exists(context.Background(), "US123")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPutAndGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outcome, err := s.Put(ctx, sampleRecord("US123"))
	require.NoError(t, err)
	assert.Equal(t, PutInserted, outcome)

	got, err := s.Get(ctx, "US123")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "US123", got.ISRC)
	assert.False(t, got.IsExplicit)
	assert.True(t, got.ExplicitVersionExists)
	assert.Equal(t, "Song", got.Title)
	assert.Equal(t, "Artist", got.Artist)
	assert.Equal(t, 2020, got.Year)
	assert.Equal(t, "Album Version", got.Version)
	assert.True(t, got.ValidISRC)
	assert.Equal(t, "/music/US123.flac", got.FilePath)
	assert.WithinDuration(t, time.Now().UTC(), got.CreatedAt, time.Minute)
}

func TestGetAbsent(t *testing.T) {
	s := newTestStore(t)

	got, err := s.Get(context.Background(), "US000")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "US123")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = s.Put(ctx, sampleRecord("US123"))
	require.NoError(t, err)

	exists, err = s.Exists(ctx, "US123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPutDuplicateLeavesRecordUnchanged(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleRecord("US123")
	_, err := s.Put(ctx, first)
	require.NoError(t, err)

	second := sampleRecord("US123")
	second.Title = "Other Title"
	second.IsExplicit = true

	outcome, err := s.Put(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, PutDuplicate, outcome)

	got, err := s.Get(ctx, "US123")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Song", got.Title, "duplicate write must not mutate the stored record")
	assert.False(t, got.IsExplicit)
}

func TestCleanWithExplicit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Clean with explicit counterpart: the interesting one.
	match := sampleRecord("US111")

	// Clean without counterpart.
	noMatch := sampleRecord("US222")
	noMatch.ExplicitVersionExists = false

	// Explicit itself.
	explicit := sampleRecord("US333")
	explicit.IsExplicit = true
	explicit.ExplicitVersionExists = false

	for _, rec := range []types.TrackRecord{match, noMatch, explicit} {
		_, err := s.Put(ctx, rec)
		require.NoError(t, err)
	}

	got, err := s.CleanWithExplicit(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "US111", got[0].ISRC)
}

func TestCleanWithExplicitOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := sampleRecord("US222")
	b.Artist = "Beta"
	a := sampleRecord("US111")
	a.Artist = "Alpha"

	for _, rec := range []types.TrackRecord{b, a} {
		_, err := s.Put(ctx, rec)
		require.NoError(t, err)
	}

	got, err := s.CleanWithExplicit(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Artist)
	assert.Equal(t, "Beta", got[1].Artist)
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, isrc := range []string{"US111", "US222", "US333"} {
		_, err := s.Put(ctx, sampleRecord(isrc))
		require.NoError(t, err)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(types.StoreConfig{DBPath: filepath.Join(t.TempDir(), "missing-dir", "music.db")})
	require.Error(t, err)
}
