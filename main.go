package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"history-graph/internal/config"
	"history-graph/internal/database"
	"history-graph/internal/extract"
	"history-graph/internal/knowledge"
	"history-graph/internal/logger"
	"history-graph/internal/logger/console"
	"history-graph/internal/source"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configFile string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:           "history-graph",
		Short:         "Temporal knowledge graph of entities in historical text",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML config file")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("variant", "extended", "Inference variant: basic or extended")
	flags.Bool("distinct-years", false, "Count a year once per passage even if it repeats")
	flags.String("source.kind", "csv", "Passage source: csv or postgres")
	flags.String("source.path", "historical_data.csv", "CSV file with passages")
	flags.String("source.column", "text", "Column holding passage text")
	flags.String("source.dsn", "", "Postgres connection URL (default $DATABASE_URL)")
	flags.String("source.table", "passages", "Postgres table holding passages")
	flags.String("extractor.kind", "ollama", "Entity extractor: ollama or gazetteer")
	flags.String("extractor.model", "llama3.1", "Ollama model used for entity extraction")
	flags.String("extractor.base-url", "", "Ollama base URL (default $OLLAMA_HOST)")
	flags.String("extractor.gazetteer", "gazetteer.yaml", "Gazetteer YAML file")

	rootCmd.AddCommand(newRunCmd(), newServeCmd(), newImportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and installs the console logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{Debug: cfg.Debug}))
	return cfg, nil
}

func newExtractor(cfg *config.Config) (extract.Extractor, error) {
	switch cfg.Extractor.Kind {
	case "gazetteer":
		return extract.LoadGazetteer(cfg.Extractor.Gazetteer)
	default:
		return extract.NewOllamaExtractor(extract.NewOllamaExtractorParams{
			Model:   cfg.Extractor.Model,
			BaseURL: cfg.Extractor.BaseURL,
			ApiKey:  cfg.Extractor.APIKey,
		})
	}
}

// newSource returns the configured passage source and a cleanup func.
func newSource(ctx context.Context, cfg *config.Config) (source.Source, func(), error) {
	if cfg.Source.Kind != "postgres" {
		return source.CSVSource{Path: cfg.Source.Path, Column: cfg.Source.Column}, func() {}, nil
	}
	db, err := connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	src := source.PostgresSource{
		DB:     db,
		Table:  cfg.Source.Table,
		Column: cfg.Source.Column,
		IDs:    cfg.Source.IDs,
	}
	return src, func() { db.Close() }, nil
}

func connect(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.NewConnection(ctx, cfg.Source.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newManager(cfg *config.Config) (*knowledge.Manager, error) {
	extractor, err := newExtractor(cfg)
	if err != nil {
		return nil, err
	}
	variant, err := knowledge.ParseVariant(cfg.Variant)
	if err != nil {
		return nil, err
	}
	return knowledge.NewManager(extractor, knowledge.Options{
		Variant:       variant,
		DistinctYears: cfg.DistinctYears,
	}), nil
}
