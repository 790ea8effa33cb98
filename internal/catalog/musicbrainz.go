// Copyright Justin Henderson, 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/time/rate"
)

// musicBrainzBase is the MusicBrainz recording search endpoint. Declared
// as a var so tests can substitute an httptest server.
var musicBrainzBase = "https://musicbrainz.org/ws/2/recording"

const (
	// mbMinScore is the minimum MusicBrainz match score to accept.
	mbMinScore = 80
	// mbMinSimilarity is the minimum Jaro-Winkler similarity between the
	// queried artist+title and the candidate's.
	mbMinSimilarity = 0.9
)

// MusicBrainz resolves ISRCs for files that carry no ISRC tag, by
// searching recordings by artist and title. MusicBrainz guidelines allow
// one request per second; the resolver owns its limiter since that budget
// is independent of the catalog gate.
type MusicBrainz struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewMusicBrainz returns a resolver. userAgent must be descriptive per
// MusicBrainz API rules.
func NewMusicBrainz(client *http.Client, userAgent string) *MusicBrainz {
	return &MusicBrainz{
		client:    client,
		userAgent: userAgent,
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// mbResponse is the MusicBrainz recording search response, reduced to the
// fields the resolver needs.
type mbResponse struct {
	Recordings []struct {
		ID           string   `json:"id"`
		Title        string   `json:"title"`
		Score        int      `json:"score"`
		ISRCs        []string `json:"isrcs"`
		ArtistCredit []struct {
			Name string `json:"name"`
		} `json:"artist-credit"`
	} `json:"recordings"`
}

// ResolveISRC returns the ISRC of the best-matching recording for
// artist and title, or "" when no candidate is trustworthy. Any failure
// resolves to ""; the caller skips the file.
func (m *MusicBrainz) ResolveISRC(ctx context.Context, artist, title string) string {
	if artist == "" || title == "" {
		return ""
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return ""
	}

	query := fmt.Sprintf("artist:%q AND recording:%q", artist, title)
	searchURL := fmt.Sprintf("%s?query=%s&fmt=json", musicBrainzBase, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var res mbResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return ""
	}

	want := strings.ToLower(artist + " " + title)
	jw := metrics.NewJaroWinkler()

	for _, rec := range res.Recordings {
		if rec.Score < mbMinScore || len(rec.ISRCs) == 0 {
			continue
		}
		candArtist := ""
		if len(rec.ArtistCredit) > 0 {
			candArtist = rec.ArtistCredit[0].Name
		}
		got := strings.ToLower(candArtist + " " + rec.Title)
		if strutil.Similarity(want, got, jw) >= mbMinSimilarity {
			return rec.ISRCs[0]
		}
	}
	return ""
}
