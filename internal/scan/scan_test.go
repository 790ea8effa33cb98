// Copyright Justin Henderson, 2026. All rights reserved.

package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinHenderson98/CleanMusicLocator/internal/library"
	"github.com/JustinHenderson98/CleanMusicLocator/internal/reconcile"
	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

type fakeExtractor struct {
	tags map[string]types.TrackTags
	errs map[string]error
}

func (f *fakeExtractor) Read(path string) (types.TrackTags, error) {
	if err := f.errs[path]; err != nil {
		return types.TrackTags{}, err
	}
	t, ok := f.tags[path]
	if !ok {
		t = types.TrackTags{Path: path, ISRC: "US" + filepath.Base(path)}
	}
	t.Path = path
	return t, nil
}

type fakeResolver struct {
	isrc  string
	calls int
}

func (f *fakeResolver) ResolveISRC(context.Context, string, string) string {
	f.calls++
	return f.isrc
}

type memCache struct {
	records map[string]types.TrackRecord
	putErr  error
}

func (m *memCache) Exists(_ context.Context, isrc string) (bool, error) {
	_, ok := m.records[isrc]
	return ok, nil
}

func (m *memCache) Put(_ context.Context, rec types.TrackRecord) (library.PutOutcome, error) {
	if m.putErr != nil {
		return library.PutInserted, m.putErr
	}
	if _, ok := m.records[rec.ISRC]; ok {
		return library.PutDuplicate, nil
	}
	m.records[rec.ISRC] = rec
	return library.PutInserted, nil
}

type stubCatalog struct {
	entries map[string]*types.CatalogEntry
	results []types.CatalogEntry
}

func (s *stubCatalog) LookupISRC(_ context.Context, isrc string) (*types.CatalogEntry, error) {
	return s.entries[isrc], nil
}

func (s *stubCatalog) SearchRecordings(context.Context, string, string, int) ([]types.CatalogEntry, error) {
	return s.results, nil
}

func writeMusicTree(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
	return root
}

func newRunner(cache *memCache, catalog *stubCatalog, ext *fakeExtractor) *Runner {
	return &Runner{
		Extractor: ext,
		Engine: &reconcile.Engine{
			Cache:   cache,
			Catalog: catalog,
			Gate:    NewGate(types.ScanConfig{}),
			Out:     &bytes.Buffer{},
		},
	}
}

func TestCollectMusicFiles(t *testing.T) {
	root := writeMusicTree(t,
		"a/one.flac",
		"a/two.MP3",
		"b/three.opus",
		"b/cover.jpg",
		"notes.txt",
	)

	var out bytes.Buffer
	files, err := CollectMusicFiles(root, &out)
	require.NoError(t, err)

	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(root, "a/one.flac"), files[0])
	assert.Equal(t, filepath.Join(root, "a/two.MP3"), files[1])
	assert.Equal(t, filepath.Join(root, "b/three.opus"), files[2])
}

func TestCollectMusicFilesMissingRoot(t *testing.T) {
	var out bytes.Buffer
	_, err := CollectMusicFiles(filepath.Join(t.TempDir(), "nope"), &out)
	require.Error(t, err)
}

func TestRunCountsOutcomes(t *testing.T) {
	root := writeMusicTree(t, "clean.flac", "explicit.flac", "unknown.flac", "broken.flac", "untagged.flac")

	ext := &fakeExtractor{
		tags: map[string]types.TrackTags{
			filepath.Join(root, "clean.flac"):    {ISRC: "US111"},
			filepath.Join(root, "explicit.flac"): {ISRC: "US222"},
			filepath.Join(root, "unknown.flac"):  {ISRC: "US333"},
			filepath.Join(root, "untagged.flac"): {ISRC: ""},
		},
		errs: map[string]error{
			filepath.Join(root, "broken.flac"): errors.New("no audio stream"),
		},
	}
	catalog := &stubCatalog{
		entries: map[string]*types.CatalogEntry{
			"US111": {ISRC: "US111", Title: "Song", Artist: "Artist", Explicit: false},
			"US222": {ISRC: "US222", Title: "Song", Artist: "Artist", Explicit: true},
		},
		results: []types.CatalogEntry{{Explicit: true}},
	}
	cache := &memCache{records: map[string]types.TrackRecord{}}
	r := newRunner(cache, catalog, ext)

	var out bytes.Buffer
	summary, err := r.Run(context.Background(), root, &out)
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Explicit:     1,
		CleanMatch:   1,
		CleanNoMatch: 1,
		Skipped:      2,
	}, summary)
	assert.Equal(t, 5, summary.Total())
	assert.Contains(t, out.String(), "no ISRC")
	assert.Contains(t, out.String(), "Scan summary")
}

func TestRunSecondPassAllCached(t *testing.T) {
	root := writeMusicTree(t, "one.flac", "two.flac")
	ext := &fakeExtractor{
		tags: map[string]types.TrackTags{
			filepath.Join(root, "one.flac"): {ISRC: "US111"},
			filepath.Join(root, "two.flac"): {ISRC: "US222"},
		},
	}
	cache := &memCache{records: map[string]types.TrackRecord{}}
	r := newRunner(cache, &stubCatalog{}, ext)

	var out bytes.Buffer
	_, err := r.Run(context.Background(), root, &out)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), root, &out)
	require.NoError(t, err)
	assert.Equal(t, Summary{Cached: 2}, summary)
}

func TestRunResolvesMissingISRC(t *testing.T) {
	root := writeMusicTree(t, "untagged.flac")
	ext := &fakeExtractor{
		tags: map[string]types.TrackTags{
			filepath.Join(root, "untagged.flac"): {Artist: "Artist", Title: "Song"},
		},
	}
	cache := &memCache{records: map[string]types.TrackRecord{}}
	r := newRunner(cache, &stubCatalog{}, ext)
	resolver := &fakeResolver{isrc: "US444"}
	r.Resolver = resolver

	var out bytes.Buffer
	summary, err := r.Run(context.Background(), root, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, Summary{CleanNoMatch: 1}, summary)
	_, ok := cache.records["US444"]
	assert.True(t, ok, "resolved ISRC should be persisted")
}

func TestRunResolverFindsNothing(t *testing.T) {
	root := writeMusicTree(t, "untagged.flac")
	ext := &fakeExtractor{
		tags: map[string]types.TrackTags{
			filepath.Join(root, "untagged.flac"): {Artist: "Artist", Title: "Song"},
		},
	}
	cache := &memCache{records: map[string]types.TrackRecord{}}
	r := newRunner(cache, &stubCatalog{}, ext)
	r.Resolver = &fakeResolver{isrc: ""}

	var out bytes.Buffer
	summary, err := r.Run(context.Background(), root, &out)
	require.NoError(t, err)
	assert.Equal(t, Summary{Skipped: 1}, summary)
}

func TestRunStorageFailureAborts(t *testing.T) {
	root := writeMusicTree(t, "one.flac", "two.flac")
	cache := &memCache{records: map[string]types.TrackRecord{}, putErr: errors.New("disk full")}
	r := newRunner(cache, &stubCatalog{}, &fakeExtractor{})

	var out bytes.Buffer
	summary, err := r.Run(context.Background(), root, &out)
	require.Error(t, err)
	// Aborted on the first file; the second was never attempted.
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Total())
}

func TestRunNoMusicFiles(t *testing.T) {
	root := writeMusicTree(t, "readme.txt")
	r := newRunner(&memCache{records: map[string]types.TrackRecord{}}, &stubCatalog{}, &fakeExtractor{})

	var out bytes.Buffer
	_, err := r.Run(context.Background(), root, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no music files")
}

func TestRunContextCancelled(t *testing.T) {
	root := writeMusicTree(t, "one.flac")
	r := newRunner(&memCache{records: map[string]types.TrackRecord{}}, &stubCatalog{}, &fakeExtractor{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := r.Run(ctx, root, &out)
	require.ErrorIs(t, err, context.Canceled)
}
