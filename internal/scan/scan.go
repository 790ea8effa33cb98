// Copyright Justin Henderson, 2026. All rights reserved.

// Package scan walks a music library and feeds each file through tag
// extraction and reconciliation. Individual files fail soft; only storage
// failure aborts a run.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"

	"golang.org/x/time/rate"

	"github.com/JustinHenderson98/CleanMusicLocator/internal/reconcile"
	"github.com/JustinHenderson98/CleanMusicLocator/internal/tags"
	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

// Extractor reads tags from a local music file.
type Extractor interface {
	Read(path string) (types.TrackTags, error)
}

// Resolver finds an ISRC for files that carry none. Optional.
type Resolver interface {
	ResolveISRC(ctx context.Context, artist, title string) string
}

// Summary holds counts from one scan run.
type Summary struct {
	Cached       int
	Explicit     int
	CleanMatch   int
	CleanNoMatch int
	Skipped      int
	Failed       int
}

// Total returns the number of files processed.
func (s Summary) Total() int {
	return s.Cached + s.Explicit + s.CleanMatch + s.CleanNoMatch + s.Skipped + s.Failed
}

// CollectMusicFiles walks root recursively and returns all music file
// paths in deterministic order. Unreadable subtrees are skipped with a
// warning rather than aborting the walk.
func CollectMusicFiles(root string, w io.Writer) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			fmt.Fprintf(w, "warning: skipping %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && tags.IsMusicFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Runner drives a scan: one file fully processed before the next.
type Runner struct {
	Extractor Extractor
	Engine    *reconcile.Engine

	// Resolver is consulted for files without an ISRC tag; nil disables
	// resolution and such files are skipped.
	Resolver Resolver
}

// NewGate builds the shared rate gate from the configured minimum delay
// between catalog calls. A zero delay imposes no gap.
func NewGate(cfg types.ScanConfig) *rate.Limiter {
	if cfg.Delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(cfg.Delay), 1)
}

// Run processes every music file under root. Extraction failures and
// missing identifiers log a line and count as skipped; reconciliation
// continues with the next file. A storage error aborts the run and is
// returned, since without the store there is no dedup guarantee.
func (r *Runner) Run(ctx context.Context, root string, w io.Writer) (Summary, error) {
	files, err := CollectMusicFiles(root, w)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("no music files found under %s", root)
	}

	var summary Summary
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		t, err := r.Extractor.Read(path)
		if err != nil {
			fmt.Fprintf(w, "skipped: %s (%v)\n", path, err)
			summary.Skipped++
			continue
		}

		if t.ISRC == "" && r.Resolver != nil {
			t.ISRC = r.Resolver.ResolveISRC(ctx, t.Artist, t.Title)
		}
		if t.ISRC == "" {
			fmt.Fprintf(w, "skipped: %s (no ISRC)\n", path)
			summary.Skipped++
			continue
		}

		outcome, err := r.Engine.Reconcile(ctx, t)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return summary, err
			}
			// Storage failure: the run cannot safely continue.
			fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
			summary.Failed++
			return summary, err
		}

		switch outcome {
		case reconcile.OutcomeCached:
			summary.Cached++
		case reconcile.OutcomeExplicit:
			summary.Explicit++
		case reconcile.OutcomeCleanMatch:
			summary.CleanMatch++
		case reconcile.OutcomeCleanNoMatch:
			summary.CleanNoMatch++
		}
	}

	fmt.Fprintf(w, "\nScan summary: %d cached, %d explicit, %d clean with match, %d clean without match, %d skipped, %d failed (total: %d)\n",
		summary.Cached, summary.Explicit, summary.CleanMatch, summary.CleanNoMatch,
		summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}
