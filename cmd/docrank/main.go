// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docrank CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mihir205/Challenge-1b/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the docrank CLI.
var rootCmd = &cobra.Command{
	Use:   "docrank",
	Short: "Persona-driven document section ranking",
	Long: `docrank reads persona/task request files and a folder of PDF documents
per request, extracts heading candidates from each document's typography,
ranks them by semantic relevance to the persona's job-to-be-done, and
refines the most relevant passages from the top sections.

Each request produces one JSON result listing the top sections and the
top passages within them.`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docrank.yaml or ~/.config/docrank/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docrank")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docrank"))
		}
	}

	viper.SetEnvPrefix("DOCRANK")
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
