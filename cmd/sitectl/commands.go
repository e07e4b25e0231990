package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mr1hm/siting-dashboard/internal/dashboard"
	"github.com/mr1hm/siting-dashboard/internal/filter"
	"github.com/mr1hm/siting-dashboard/internal/models"
	"github.com/mr1hm/siting-dashboard/internal/repository"
)

func parseCategory(arg string) (models.Category, error) {
	c, ok := models.ParseCategory(arg)
	if !ok {
		return "", fmt.Errorf("unknown category %q (want one of %v)", arg, models.SiteCategories)
	}
	return c, nil
}

type criteriaFlags struct {
	query        string
	provinces    []string
	minViability int
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "case-insensitive name search")
	cmd.Flags().StringSliceVarP(&f.provinces, "province", "p", nil, "province codes to keep (repeatable)")
	cmd.Flags().IntVar(&f.minViability, "min-viability", 0, "minimum viability score")
}

func (f *criteriaFlags) criteria() (filter.Criteria, error) {
	if f.minViability < 0 || f.minViability > 100 {
		return filter.Criteria{}, fmt.Errorf("--min-viability must be within 0-100, got %d", f.minViability)
	}
	c := filter.Criteria{SearchQuery: f.query, MinViability: f.minViability}
	for _, p := range f.provinces {
		province, ok := models.ParseProvince(p)
		if !ok {
			return filter.Criteria{}, fmt.Errorf("unknown province %q", p)
		}
		c.Provinces = append(c.Provinces, province)
	}
	return c, nil
}

func sitesCmd(opts *options) *cobra.Command {
	var cf criteriaFlags

	cmd := &cobra.Command{
		Use:   "sites [category]",
		Short: "List a category's sites after filtering, with the hot subset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			criteria, err := cf.criteria()
			if err != nil {
				return err
			}

			svc, err := opts.service(cmd.Context(), dashboard.DefaultConfig())
			if err != nil {
				return err
			}
			view, err := svc.View(category, criteria)
			if err != nil {
				return err
			}

			total := 0
			for _, info := range svc.Categories() {
				if info.Category == category {
					total = info.Sites
				}
			}

			out := cmd.OutOrStdout()
			renderSites(out, view.Sites)
			fmt.Fprintf(out, "\n%d of %d sites, %d hot (>= %d)\n", len(view.Sites), total, len(view.Hot), view.Threshold)
			return nil
		},
	}

	cf.register(cmd)
	return cmd
}

func hotCmd(opts *options) *cobra.Command {
	var (
		cf        criteriaFlags
		threshold int
	)

	cmd := &cobra.Command{
		Use:   "hot [category]",
		Short: "Rank the category's sites at or above a viability threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			criteria, err := cf.criteria()
			if err != nil {
				return err
			}

			svc, err := opts.service(cmd.Context(), dashboard.DefaultConfig())
			if err != nil {
				return err
			}
			hot, err := svc.Hot(category, criteria, threshold)
			if err != nil {
				return err
			}

			renderSites(cmd.OutOrStdout(), hot)
			return nil
		},
	}

	cf.register(cmd)
	cmd.Flags().IntVarP(&threshold, "threshold", "t", dashboard.DefaultConfig().HotThreshold, "minimum score to count as hot")
	return cmd
}

func detailsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "details [category] [id]",
		Short: "Show one site with its category-specific details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}

			svc, err := opts.service(cmd.Context(), dashboard.DefaultConfig())
			if err != nil {
				return err
			}
			site, fields, err := svc.Site(category, args[1])
			if err != nil {
				return err
			}

			renderDetails(cmd.OutOrStdout(), site, fields)
			return nil
		},
	}
}

func layoutCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the ontology graph coordinates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd.Context(), dashboard.DefaultConfig())
			if err != nil {
				return err
			}
			view := svc.Ontology()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}
			renderLayout(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit nodes, positions and edges as JSON")
	return cmd
}

func importCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import [db-path]",
		Short: "Write the YAML catalog snapshot into a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the destination is the argument; never read from it
			src := *opts
			src.dbPath = ""
			cat, err := src.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}

			db, err := repository.NewSQLiteDB(args[0])
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.ReplaceSnapshot(cmd.Context(), cat); err != nil {
				return err
			}
			slog.Info("snapshot imported", "db", args[0], "version", cat.Version())

			out := cmd.OutOrStdout()
			total := 0
			for _, c := range cat.Categories() {
				n, err := db.Count(cmd.Context(), c)
				if err != nil {
					return err
				}
				total += n
				fmt.Fprintf(out, "%-14s %s\n", c, humanize.Comma(int64(n)))
			}
			fmt.Fprintf(out, "imported %s sites into %s\n", humanize.Comma(int64(total)), args[0])
			return nil
		},
	}
}
