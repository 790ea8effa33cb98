// Copyright Justin Henderson, 2026. All rights reserved.

package tags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

// Music file extensions the scan considers.
const (
	ExtFLAC = ".flac"
	ExtOpus = ".opus"
	ExtMP3  = ".mp3"
)

// IsMusicFile reports whether path has a supported music file extension.
func IsMusicFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ExtFLAC) ||
		strings.HasSuffix(lower, ExtOpus) ||
		strings.HasSuffix(lower, ExtMP3)
}

// Read probes path and returns its tags. It fails when the file cannot be
// probed or contains no audio stream; a missing ISRC is not an error, the
// caller decides whether to resolve or skip.
func (p *Prober) Read(path string) (types.TrackTags, error) {
	probed, err := p.Probe(path)
	if err != nil {
		return types.TrackTags{}, err
	}

	merged := make(map[string]string)
	for k, v := range probed.Format.Tags {
		merged[strings.ToLower(k)] = v
	}

	hasAudio := false
	for _, s := range probed.Streams {
		if s.CodecType != "audio" {
			continue
		}
		hasAudio = true
		for k, v := range s.Tags {
			merged[strings.ToLower(k)] = v
		}
	}
	if !hasAudio {
		return types.TrackTags{}, fmt.Errorf("no audio stream in %s", path)
	}

	t := types.TrackTags{
		Path:        path,
		Title:       merged["title"],
		Artist:      merged["artist"],
		AlbumArtist: merged["album_artist"],
		ISRC:        strings.TrimSpace(merged["isrc"]),
		Year:        parseYear(merged["date"]),
	}
	return t, nil
}

// parseYear extracts the year from a DATE tag, which may be "YYYY" or
// "YYYY-MM-DD". Returns 0 when unparseable.
func parseYear(date string) int {
	if len(date) > 4 {
		date = date[:4]
	}
	year, err := strconv.Atoi(date)
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
