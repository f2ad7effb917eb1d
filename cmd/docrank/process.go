// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mihir205/Challenge-1b/internal/embed"
	"github.com/Mihir205/Challenge-1b/internal/layout"
	"github.com/Mihir205/Challenge-1b/internal/pipeline"
	"github.com/Mihir205/Challenge-1b/internal/secrets"
	"github.com/Mihir205/Challenge-1b/pkg/types"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the pipeline over all persona request files",
	Long: `Process reads every JSON request file in the input directory. For a
request file named <prefix>.json, the PDFs under <docs>/<prefix>/ are
analyzed and the result is written to <output>/<prefix>.json. Requests
whose document folder is missing or empty are skipped with a warning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		embedder, closeEmbedder, err := buildEmbedder(cfg.Embedding)
		if err != nil {
			return err
		}
		defer closeEmbedder()

		runner := pipeline.NewRunner(layout.NewPDFParser(), embedder, cfg)
		summary, err := runner.Run(cmd.Context(), os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d of %d requests failed", summary.Failed, summary.Total())
		}
		return nil
	},
}

func init() {
	processCmd.Flags().String("input", "input", "directory of persona request files")
	processCmd.Flags().String("docs", "pdfs", "directory of per-request document folders")
	processCmd.Flags().String("output", "output", "directory for result files")
	processCmd.Flags().String("embedder", "", "embedding backend: hashing or openai")
	processCmd.Flags().String("model", "", "model identifier for a remote embedder")
	processCmd.Flags().String("base-url", "", "base URL of an OpenAI-compatible embeddings API")
	processCmd.Flags().String("cache", "", "path to the SQLite embedding cache (empty disables caching)")
	processCmd.Flags().Int("top-sections", 0, "maximum sections per request (default 5)")
	processCmd.Flags().Int("top-passages", 0, "maximum passages per request (default 5)")

	rootCmd.AddCommand(processCmd)
}

// resolveConfig layers defaults, the config file/environment, and
// command-line flags, most specific last.
func resolveConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.InputDir, _ = flags.GetString("input")
	}
	if flags.Changed("docs") {
		cfg.DocsDir, _ = flags.GetString("docs")
	}
	if flags.Changed("output") {
		cfg.ResultsDir, _ = flags.GetString("output")
	}
	if flags.Changed("embedder") {
		cfg.Embedding.Provider, _ = flags.GetString("embedder")
	}
	if flags.Changed("model") {
		cfg.Embedding.Model, _ = flags.GetString("model")
	}
	if flags.Changed("base-url") {
		cfg.Embedding.BaseURL, _ = flags.GetString("base-url")
	}
	if flags.Changed("cache") {
		cfg.Embedding.CachePath, _ = flags.GetString("cache")
	}
	if flags.Changed("top-sections") {
		cfg.Ranking.TopSections, _ = flags.GetInt("top-sections")
	}
	if flags.Changed("top-passages") {
		cfg.Subsection.TopPassages, _ = flags.GetInt("top-passages")
	}
	return cfg, nil
}

// buildEmbedder constructs the configured embedding backend, wrapped in
// the SQLite cache when a cache path is set. The returned func releases
// cache resources.
func buildEmbedder(cfg types.EmbeddingConfig) (embed.Embedder, func(), error) {
	var embedder embed.Embedder
	switch cfg.Provider {
	case "", "hashing":
		embedder = embed.NewHashing(cfg.Dimension)
	case "openai":
		if url := secrets.Get(loadedSecrets, "embeddings-base-url", "DOCRANK_EMBEDDINGS_BASE_URL"); url != "" && cfg.BaseURL == "" {
			cfg.BaseURL = url
		}
		apiKey := secrets.Get(loadedSecrets, "openai-api-key", "OPENAI_API_KEY")
		embedder = embed.NewOpenAI(cfg, apiKey)
	default:
		return nil, nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	if cfg.CachePath == "" {
		return embedder, func() {}, nil
	}
	cache, err := embed.NewCache(cfg.CachePath, embedder)
	if err != nil {
		return nil, nil, err
	}
	return cache, func() { cache.Close() }, nil
}
