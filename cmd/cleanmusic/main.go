// Copyright Justin Henderson, 2026. All rights reserved.

// Package main is the entry point for the cleanmusic CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JustinHenderson98/CleanMusicLocator/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultUserAgent = "cleanmusic/0.1 (+https://github.com/JustinHenderson98/CleanMusicLocator)"

// loadedSecrets holds API tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for
// key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the cleanmusic CLI.
var rootCmd = &cobra.Command{
	Use:   "cleanmusic",
	Short: "Find clean tracks in your library that have an explicit version",
	Long: `cleanmusic scans a local music collection and records, per track, whether
the track is explicit and whether an explicit version of the same song exists
in the remote recordings catalog. The interesting output is the set of clean
tracks whose explicit original you are missing.

Each stage is a subcommand: scan walks a directory and reconciles every
track, report lists the clean tracks with a known explicit counterpart, and
lookup queries the catalog for a single ISRC without persisting anything.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./cleanmusic.yaml or ~/.config/cleanmusic/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("cleanmusic")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "cleanmusic"))
		}
	}

	viper.SetEnvPrefix("CLEANMUSIC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
