// Copyright Justin Henderson, 2026. All rights reserved.

// Package catalog queries the remote recordings catalog. Lookup and search
// failures of any kind fold into not-found and empty-result outcomes so a
// single track's bad luck never aborts a whole scan.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/JustinHenderson98/CleanMusicLocator/internal/httputil"
	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

// soundExchangeBase is the SoundExchange recordings endpoint. Declared as
// a var so tests can substitute an httptest server.
var soundExchangeBase = "https://isrc-api.soundexchange.com/api/ext/recordings"

const (
	defaultSearchPageSize = 100
	lookupPageSize        = 10
	defaultSearchCacheTTL = 30 * time.Minute
)

// SoundExchange is a client for the SoundExchange recordings API. It does
// not rate-limit; the caller owns the shared gate between catalog calls.
type SoundExchange struct {
	client *http.Client
	cfg    types.CatalogConfig

	// searchMemo caches search responses within a run. Tracks from one
	// album repeat the same artist/title searches.
	searchMemo *gocache.Cache
}

// NewSoundExchange returns a client using the given HTTP client and config.
func NewSoundExchange(client *http.Client, cfg types.CatalogConfig) *SoundExchange {
	var memo *gocache.Cache
	ttl := cfg.SearchCacheTTL
	if ttl == 0 {
		ttl = defaultSearchCacheTTL
	}
	if ttl > 0 {
		memo = gocache.New(ttl, 2*ttl)
	}
	return &SoundExchange{client: client, cfg: cfg, searchMemo: memo}
}

// LookupISRC fetches the catalog entry for an ISRC. A missing, ambiguous,
// or malformed remote response returns (nil, nil): absence is an expected
// outcome, not an error.
func (c *SoundExchange) LookupISRC(ctx context.Context, isrc string) (*types.CatalogEntry, error) {
	payload := lookupPayload{
		SearchFields: lookupFields{ISRC: isrc},
		Start:        0,
		Number:       lookupPageSize,
		ShowReleases: false,
	}

	recordings, err := c.post(ctx, payload)
	if err != nil || len(recordings) == 0 {
		return nil, nil
	}
	entry := parseEntry(recordings[0])
	return &entry, nil
}

// SearchRecordings returns candidate recordings matching title, artist,
// and year. No-match and remote failure both return an empty list; the
// two outcomes are deliberately not distinguished.
func (c *SoundExchange) SearchRecordings(ctx context.Context, title, artist string, year int) ([]types.CatalogEntry, error) {
	memoKey := title + "\x00" + artist + "\x00" + strconv.Itoa(year)
	if c.searchMemo != nil {
		if cached, ok := c.searchMemo.Get(memoKey); ok {
			return cached.([]types.CatalogEntry), nil
		}
	}

	pageSize := c.cfg.SearchPageSize
	if pageSize <= 0 {
		pageSize = defaultSearchPageSize
	}

	yearStr := ""
	if year > 0 {
		yearStr = strconv.Itoa(year)
	}
	payload := searchPayload{
		SearchFields: searchFields{
			RecordingArtistName: valueField{Value: artist},
			RecordingTitle:      valueField{Value: title},
			RecordingYear:       yearStr,
		},
		Start:        0,
		Number:       pageSize,
		ShowReleases: false,
	}

	recordings, err := c.post(ctx, payload)
	if err != nil {
		return nil, nil
	}

	entries := make([]types.CatalogEntry, 0, len(recordings))
	for _, rec := range recordings {
		entries = append(entries, parseEntry(rec))
	}
	if c.searchMemo != nil {
		c.searchMemo.Set(memoKey, entries, gocache.DefaultExpiration)
	}
	return entries, nil
}

// post sends a search payload and decodes the recordings list.
func (c *SoundExchange) post(ctx context.Context, payload any) ([]seRecording, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling catalog payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, soundExchangeBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned HTTP %d", resp.StatusCode)
	}

	var sr seResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing catalog response: %w", err)
	}
	return sr.Recordings, nil
}

// parseEntry maps a wire recording to a CatalogEntry. The catalog encodes
// booleans as the strings "True"/"False"; anything other than "True",
// including an absent flag, parses to false.
func parseEntry(rec seRecording) types.CatalogEntry {
	year, _ := strconv.Atoi(rec.RecordingYear)
	return types.CatalogEntry{
		ISRC:        rec.ISRC,
		Title:       rec.RecordingTitle,
		Artist:      rec.RecordingArtistName,
		Year:        year,
		Version:     rec.RecordingVersion,
		Duration:    rec.Duration,
		Explicit:    rec.IsExplicit == "True",
		ValidISRC:   rec.IsValidISRC == "True",
		FailureCode: rec.ISRCFailureCode,
	}
}

// SoundExchange API JSON structures.
type lookupPayload struct {
	SearchFields lookupFields `json:"searchFields"`
	Start        int          `json:"start"`
	Number       int          `json:"number"`
	ShowReleases bool         `json:"showReleases"`
}

type lookupFields struct {
	ISRC string `json:"isrc"`
}

type searchPayload struct {
	SearchFields searchFields `json:"searchFields"`
	Start        int          `json:"start"`
	Number       int          `json:"number"`
	ShowReleases bool         `json:"showReleases"`
}

type searchFields struct {
	RecordingArtistName valueField `json:"recordingArtistName"`
	RecordingTitle      valueField `json:"recordingTitle"`
	RecordingYear       string     `json:"recordingYear"`
}

type valueField struct {
	Value string `json:"value"`
}

type seResponse struct {
	Recordings []seRecording `json:"recordings"`
}

type seRecording struct {
	ID                  string `json:"id"`
	ISRC                string `json:"isrc"`
	RecordingTitle      string `json:"recordingTitle"`
	RecordingArtistName string `json:"recordingArtistName"`
	RecordingYear       string `json:"recordingYear"`
	RecordingVersion    string `json:"recordingVersion"`
	Duration            string `json:"duration"`
	IsExplicit          string `json:"isExplicit"`
	IsValidISRC         string `json:"isValidIsrc"`
	ISRCFailureCode     string `json:"isrcFailureCode"`
}
