// Copyright Justin Henderson, 2026. All rights reserved.

// Package types defines shared data structures for the cleanmusic pipeline.
package types

import "time"

// TrackTags holds the metadata read from a local music file's embedded tags.
// An empty ISRC means the file carries no usable identifier.
type TrackTags struct {
	// Path is the local filesystem path the tags were read from.
	Path string `json:"path" yaml:"path"`

	// Title is the recording title.
	Title string `json:"title" yaml:"title"`

	// Artist is the recording artist.
	Artist string `json:"artist" yaml:"artist"`

	// AlbumArtist is the album-level artist, when tagged separately.
	AlbumArtist string `json:"album_artist,omitempty" yaml:"album_artist,omitempty"`

	// Year is the release year parsed from the DATE tag, 0 when absent.
	Year int `json:"year" yaml:"year"`

	// ISRC is the International Standard Recording Code tag.
	ISRC string `json:"isrc" yaml:"isrc"`
}

// CatalogEntry represents one recording returned by the remote catalog,
// either from a direct ISRC lookup or from a title/artist/year search.
// It is never persisted.
type CatalogEntry struct {
	// ISRC is the canonical identifier of the recording.
	ISRC string `json:"isrc" yaml:"isrc"`

	// Title is the recording title as known to the catalog.
	Title string `json:"title" yaml:"title"`

	// Artist is the recording artist as known to the catalog.
	Artist string `json:"artist" yaml:"artist"`

	// Year is the recording year, 0 when the catalog omits it.
	Year int `json:"year" yaml:"year"`

	// Version is the catalog's recording version label (e.g. "Radio Edit").
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Duration is the recording duration as reported by the catalog.
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Explicit reports whether the catalog flags the recording explicit.
	// The wire value is the string "True"; anything else, including an
	// absent flag, parses to false.
	Explicit bool `json:"explicit" yaml:"explicit"`

	// ValidISRC reports whether the catalog considers the ISRC well-formed.
	ValidISRC bool `json:"valid_isrc" yaml:"valid_isrc"`

	// FailureCode is the catalog's lookup failure code, empty on success.
	FailureCode string `json:"failure_code,omitempty" yaml:"failure_code,omitempty"`
}

// TrackRecord is the persisted decision for one ISRC. Records are
// insert-only: once written they are never mutated, and the store rejects
// a second write for the same ISRC.
//
// IsExplicit and ExplicitVersionExists are always definite booleans. When
// the catalog had no data the record collapses to {false, false} rather
// than an unknown state; downstream queries filter on plain booleans.
// ExplicitVersionExists is always false when IsExplicit is true, since the
// track itself already is the explicit version.
type TrackRecord struct {
	ISRC                  string    `json:"isrc" yaml:"isrc"`
	IsExplicit            bool      `json:"is_explicit" yaml:"is_explicit"`
	ExplicitVersionExists bool      `json:"explicit_version_exists" yaml:"explicit_version_exists"`
	Title                 string    `json:"title,omitempty" yaml:"title,omitempty"`
	Artist                string    `json:"artist,omitempty" yaml:"artist,omitempty"`
	Year                  int       `json:"year,omitempty" yaml:"year,omitempty"`
	Version               string    `json:"version,omitempty" yaml:"version,omitempty"`
	Duration              string    `json:"duration,omitempty" yaml:"duration,omitempty"`
	ValidISRC             bool      `json:"valid_isrc" yaml:"valid_isrc"`
	FailureCode           string    `json:"failure_code,omitempty" yaml:"failure_code,omitempty"`
	FilePath              string    `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	CreatedAt             time.Time `json:"created_at" yaml:"created_at"`
}
