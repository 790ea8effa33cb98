// Copyright Justin Henderson, 2026. All rights reserved.

// Package reconcile decides, for one track at a time, whether the track is
// explicit and whether an explicit counterpart exists in the catalog, then
// persists that decision.
//
// The policy is deliberately conservative: when the catalog has no data,
// or a search fails, the track resolves to non-explicit with no explicit
// counterpart. A missed clean copy is acceptable; a false report is not.
// Unknown never survives reconciliation — every persisted record carries
// two definite booleans.
package reconcile

import (
	"context"
	"fmt"
	"io"

	"github.com/JustinHenderson98/CleanMusicLocator/internal/library"
	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

// Cache is the persisted decision store. It gates all catalog calls:
// a track with a record is never looked up again.
type Cache interface {
	Exists(ctx context.Context, isrc string) (bool, error)
	Put(ctx context.Context, rec types.TrackRecord) (library.PutOutcome, error)
}

// Catalog performs remote lookups. Implementations fold transport and
// parse failures into (nil, nil) and empty lists; the engine folds any
// error the same way so alternative implementations stay safe.
type Catalog interface {
	LookupISRC(ctx context.Context, isrc string) (*types.CatalogEntry, error)
	SearchRecordings(ctx context.Context, title, artist string, year int) ([]types.CatalogEntry, error)
}

// Gate enforces the minimum gap between consecutive catalog calls. It is
// shared across the whole run, not per track. *rate.Limiter satisfies it.
type Gate interface {
	Wait(ctx context.Context) error
}

// Outcome labels the terminal state of one reconciliation.
type Outcome string

const (
	// OutcomeCached means a record already existed; nothing was looked
	// up and nothing was written.
	OutcomeCached Outcome = "cached"
	// OutcomeExplicit means the track itself is the explicit version.
	OutcomeExplicit Outcome = "explicit"
	// OutcomeCleanMatch means the track is clean and an explicit
	// counterpart exists in the catalog.
	OutcomeCleanMatch Outcome = "clean-match"
	// OutcomeCleanNoMatch means the track is clean (or unknown to the
	// catalog) and no explicit counterpart was found.
	OutcomeCleanNoMatch Outcome = "clean-no-match"
)

// Engine orchestrates cache check, direct lookup, existence search,
// decision, and persistence for one identifier at a time. Collaborators
// are passed in explicitly so the engine stays testable with fakes.
type Engine struct {
	Cache   Cache
	Catalog Catalog
	Gate    Gate

	// Out receives one outcome line per processed identifier.
	Out io.Writer
}

// Reconcile runs the full decision pipeline for the track identified by
// t.ISRC. Catalog failures never escape: they resolve to the conservative
// default. Only storage errors (and context cancellation at the gate)
// are returned, and only storage errors should abort a batch.
func (e *Engine) Reconcile(ctx context.Context, t types.TrackTags) (Outcome, error) {
	cached, err := e.Cache.Exists(ctx, t.ISRC)
	if err != nil {
		return "", fmt.Errorf("checking cache for %s: %w", t.ISRC, err)
	}
	if cached {
		e.report(OutcomeCached, t)
		return OutcomeCached, nil
	}

	if err := e.Gate.Wait(ctx); err != nil {
		return "", err
	}
	entry, err := e.Catalog.LookupISRC(ctx, t.ISRC)
	if err != nil {
		entry = nil
	}

	rec := types.TrackRecord{
		ISRC:     t.ISRC,
		FilePath: t.Path,
	}
	var outcome Outcome

	switch {
	case entry == nil:
		// The catalog knows nothing about this track. Assume clean,
		// assume no explicit counterpart.
		outcome = OutcomeCleanNoMatch

	case entry.Explicit:
		// The track already is the explicit version; the existence
		// question is moot and the search must not run.
		fillFromEntry(&rec, entry)
		rec.IsExplicit = true
		outcome = OutcomeExplicit

	default:
		fillFromEntry(&rec, entry)
		rec.ExplicitVersionExists = e.explicitVersionExists(ctx, entry)
		if rec.ExplicitVersionExists {
			outcome = OutcomeCleanMatch
		} else {
			outcome = OutcomeCleanNoMatch
		}
	}

	put, err := e.Cache.Put(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("persisting %s: %w", t.ISRC, err)
	}
	if put == library.PutDuplicate {
		// Raced or double-processed; the existing record stands.
		e.report(OutcomeCached, t)
		return OutcomeCached, nil
	}

	e.report(outcome, t)
	return outcome, nil
}

// explicitVersionExists searches the catalog for an explicit recording of
// the same song. Search failure and no-match both resolve to false. The
// first explicit candidate wins, in catalog order; there is no secondary
// ranking.
func (e *Engine) explicitVersionExists(ctx context.Context, entry *types.CatalogEntry) bool {
	if err := e.Gate.Wait(ctx); err != nil {
		return false
	}
	candidates, err := e.Catalog.SearchRecordings(ctx, entry.Title, entry.Artist, entry.Year)
	if err != nil {
		return false
	}
	for _, c := range candidates {
		if c.Explicit {
			return true
		}
	}
	return false
}

func fillFromEntry(rec *types.TrackRecord, entry *types.CatalogEntry) {
	rec.Title = entry.Title
	rec.Artist = entry.Artist
	rec.Year = entry.Year
	rec.Version = entry.Version
	rec.Duration = entry.Duration
	rec.ValidISRC = entry.ValidISRC
	rec.FailureCode = entry.FailureCode
}

func (e *Engine) report(outcome Outcome, t types.TrackTags) {
	if e.Out == nil {
		return
	}
	if t.Path != "" {
		fmt.Fprintf(e.Out, "%s: %s (%s)\n", outcome, t.ISRC, t.Path)
		return
	}
	fmt.Fprintf(e.Out, "%s: %s\n", outcome, t.ISRC)
}
