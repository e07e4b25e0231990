package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/siting-dashboard/internal/catalog"
	"github.com/mr1hm/siting-dashboard/internal/dashboard"
	"github.com/mr1hm/siting-dashboard/internal/logging"
	"github.com/mr1hm/siting-dashboard/internal/ontology"
	"github.com/mr1hm/siting-dashboard/internal/repository"
)

// options are the flags shared by every subcommand.
type options struct {
	catalogPath  string
	ontologyPath string
	dbPath       string
	logLevel     string
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "sitectl",
		Short:        "Query the siting catalog and ontology from the terminal",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.SetupText(opts.logLevel, cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "catalog YAML snapshot (default: embedded)")
	flags.StringVar(&opts.ontologyPath, "ontology", os.Getenv("ONTOLOGY_PATH"), "ontology YAML snapshot (default: embedded)")
	flags.StringVar(&opts.dbPath, "db", "", "read the catalog from this SQLite snapshot instead of YAML")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")

	rootCmd.AddCommand(sitesCmd(opts))
	rootCmd.AddCommand(hotCmd(opts))
	rootCmd.AddCommand(detailsCmd(opts))
	rootCmd.AddCommand(layoutCmd(opts))
	rootCmd.AddCommand(importCmd(opts))

	return rootCmd
}

func (o *options) loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	switch {
	case o.dbPath != "":
		db, err := repository.NewSQLiteDB(o.dbPath)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return db.LoadCatalog(ctx)
	case o.catalogPath != "":
		return catalog.LoadFile(o.catalogPath)
	default:
		return catalog.Default()
	}
}

func (o *options) loadOntology() (*ontology.Graph, error) {
	if o.ontologyPath != "" {
		return ontology.LoadFile(o.ontologyPath)
	}
	return ontology.Default()
}

func (o *options) service(ctx context.Context, cfg dashboard.Config) (*dashboard.Service, error) {
	cat, err := o.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	graph, err := o.loadOntology()
	if err != nil {
		return nil, err
	}
	return dashboard.New(cat, graph, cfg, nil), nil
}
