// Copyright Justin Henderson, 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List clean tracks that have an explicit version in the catalog",
	Long: `Report queries the track database for every record with
is_explicit = false and explicit_version_exists = true: the clean copies
whose explicit original is out there. Output is a table by default.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("db", "", "SQLite database file (default music.db)")
	reportCmd.Flags().Bool("json", false, "output results as JSON")
	reportCmd.Flags().String("export", "", "also write the results to a YAML file")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	records, err := store.CleanWithExplicit(ctx)
	if err != nil {
		return err
	}
	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	if exportPath, _ := cmd.Flags().GetString("export"); exportPath != "" {
		if err := exportYAML(records, exportPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", exportPath)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	formatTable(records, total)
	return nil
}

func formatTable(records []types.TrackRecord, total int) {
	if len(records) == 0 {
		fmt.Printf("No clean tracks with a known explicit version (%d tracks scanned).\n", total)
		return
	}

	fmt.Printf("%-14s  %-40s  %-25s  %-4s  %s\n",
		"ISRC", "Title", "Artist", "Year", "File")
	fmt.Println(strings.Repeat("-", 110))

	for _, r := range records {
		year := ""
		if r.Year > 0 {
			year = fmt.Sprintf("%d", r.Year)
		}
		fmt.Printf("%-14s  %-40s  %-25s  %-4s  %s\n",
			r.ISRC, truncate(r.Title, 40), truncate(r.Artist, 25), year, r.FilePath)
	}

	fmt.Printf("\n%d of %d tracks have an explicit version you are missing\n", len(records), total)
}

func exportYAML(records []types.TrackRecord, path string) error {
	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
