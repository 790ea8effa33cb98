// Copyright Justin Henderson, 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JustinHenderson98/CleanMusicLocator/internal/catalog"
	"github.com/JustinHenderson98/CleanMusicLocator/internal/library"
	"github.com/JustinHenderson98/CleanMusicLocator/internal/reconcile"
	"github.com/JustinHenderson98/CleanMusicLocator/internal/scan"
	"github.com/JustinHenderson98/CleanMusicLocator/internal/tags"
	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

const defaultTimeout = 60 * time.Second

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Scan a music directory and reconcile every track",
	Long: `Scan walks the directory tree, reads each music file's tags with ffprobe,
and reconciles every ISRC against the catalog: already-decided tracks are
skipped, explicit tracks are recorded as such, and clean tracks are checked
for an explicit counterpart. Lookup failures resolve to conservative
defaults and never abort the run; a storage failure does.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().String("db", "", "SQLite database file (default music.db)")
	scanCmd.Flags().Int("delay", 0, "minimum gap between catalog calls in milliseconds")
	scanCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	scanCmd.Flags().Bool("resolve-isrc", false, "resolve missing ISRC tags via MusicBrainz")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delayMs, _ := cmd.Flags().GetInt("delay")
	if delayMs == 0 {
		delayMs = viper.GetInt("scan.delay")
	}
	resolveISRC, _ := cmd.Flags().GetBool("resolve-isrc")
	if !resolveISRC {
		resolveISRC = viper.GetBool("scan.resolve_isrc")
	}

	scanCfg := types.ScanConfig{
		Delay:       time.Duration(delayMs) * time.Millisecond,
		ResolveISRC: resolveISRC,
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	prober := tags.NewProber()
	if !prober.Available() {
		return fmt.Errorf("ffprobe not found on PATH; install ffmpeg to scan tags")
	}

	client := &http.Client{Timeout: timeout}
	engine := &reconcile.Engine{
		Cache:   store,
		Catalog: catalog.NewSoundExchange(client, catalogConfig(timeout)),
		Gate:    scan.NewGate(scanCfg),
		Out:     os.Stdout,
	}

	runner := &scan.Runner{Extractor: prober, Engine: engine}
	if scanCfg.ResolveISRC {
		runner.Resolver = catalog.NewMusicBrainz(client, defaultUserAgent)
	}

	_, err = runner.Run(cmd.Context(), args[0], os.Stdout)
	return err
}

// openStore opens the track database from the --db flag or config.
func openStore(cmd *cobra.Command) (*library.Store, error) {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = viper.GetString("store.db_path")
	}
	return library.Open(types.StoreConfig{DBPath: dbPath})
}

// catalogConfig assembles the catalog client settings from config and
// loaded secrets.
func catalogConfig(timeout time.Duration) types.CatalogConfig {
	return types.CatalogConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		APIToken:       secretDefault("soundexchange-api-token", viper.GetString("catalog.api_token")),
		SearchPageSize: viper.GetInt("catalog.search_page_size"),
		MaxRetries:     viper.GetInt("catalog.max_retries"),
		SearchCacheTTL: viper.GetDuration("catalog.search_cache_ttl"),
	}
}
