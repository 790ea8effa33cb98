// Copyright Justin Henderson, 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/JustinHenderson98/CleanMusicLocator/internal/catalog"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [isrc]",
	Short: "Query the catalog for a single ISRC without persisting anything",
	Long: `Lookup performs the direct catalog lookup for one ISRC and, when the
recording is not explicit, the follow-up existence search. Nothing is
written to the database; this is a debugging aid for individual tracks.`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	lookupCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	isrc := args[0]
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	client := &http.Client{Timeout: timeout}
	c := catalog.NewSoundExchange(client, catalogConfig(timeout))
	ctx := cmd.Context()

	entry, err := c.LookupISRC(ctx, isrc)
	if err != nil {
		return err
	}
	if entry == nil {
		if jsonOutput {
			fmt.Println("null")
			return nil
		}
		fmt.Printf("%s: not found in catalog\n", isrc)
		return nil
	}

	type lookupResult struct {
		Entry                 any  `json:"entry"`
		ExplicitVersionExists bool `json:"explicit_version_exists"`
		Candidates            int  `json:"candidates"`
	}
	result := lookupResult{Entry: entry}

	if !entry.Explicit {
		candidates, err := c.SearchRecordings(ctx, entry.Title, entry.Artist, entry.Year)
		if err == nil {
			result.Candidates = len(candidates)
			for _, cand := range candidates {
				if cand.Explicit {
					result.ExplicitVersionExists = true
					break
				}
			}
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("ISRC:     %s\n", entry.ISRC)
	fmt.Printf("Title:    %s\n", entry.Title)
	fmt.Printf("Artist:   %s\n", entry.Artist)
	if entry.Year > 0 {
		fmt.Printf("Year:     %d\n", entry.Year)
	}
	if entry.Version != "" {
		fmt.Printf("Version:  %s\n", entry.Version)
	}
	fmt.Printf("Explicit: %v\n", entry.Explicit)
	if !entry.Explicit {
		fmt.Printf("Explicit version exists: %v (%d candidates checked)\n",
			result.ExplicitVersionExists, result.Candidates)
	}

	return nil
}
