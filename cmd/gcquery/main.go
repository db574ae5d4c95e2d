package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivancley/gestao-conhecimento-back/config"
	"github.com/ivancley/gestao-conhecimento-back/logger"
	"github.com/ivancley/gestao-conhecimento-back/models"
	"github.com/ivancley/gestao-conhecimento-back/query"
	"github.com/ivancley/gestao-conhecimento-back/schema"
	"github.com/ivancley/gestao-conhecimento-back/store"
	"github.com/ivancley/gestao-conhecimento-back/utils"
)

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "gcquery",
		Short:         "Inspect and compile dynamic queries against the mapped schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newSchemaCommand(), newExplainCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, logger.Interface, error) {
	cfg := config.Default()
	if configPath != "" {
		read, err := config.Read(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = read
	}
	log := cfg.Logger()
	if verbose || utils.CheckTruth(os.Getenv("GC_DEBUG")) {
		log = log.LogMode(logger.Debug)
	}
	return cfg, log, nil
}

// findEntity resolves a command line entity argument: by struct name
// first, then case-insensitively, then by table name.
func findEntity(registry *schema.Registry, name string) (*schema.Entity, error) {
	if entity, err := registry.Entity(name); err == nil {
		return entity, nil
	}
	for _, entity := range registry.Entities() {
		if strings.EqualFold(entity.Name, name) || entity.Table == name {
			return entity, nil
		}
	}
	return registry.Entity(name)
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [entity]",
		Short: "Print the mapped entities, their columns and relationships",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := models.NewRegistry()
			if err != nil {
				return err
			}

			entities := registry.Entities()
			if len(args) == 1 {
				entity, err := findEntity(registry, args[0])
				if err != nil {
					return err
				}
				entities = []*schema.Entity{entity}
			}

			out := cmd.OutOrStdout()
			for _, entity := range entities {
				fmt.Fprintf(out, "%s (table %s)\n", entity.Name, entity.Table)
				for _, column := range entity.Columns {
					marker := " "
					if column.PrimaryKey {
						marker = "*"
					}
					fmt.Fprintf(out, "  %s %-20s %v\n", marker, column.DBName, column.DataType)
				}
				for _, name := range entity.RelationshipNames() {
					relation := entity.Relationship(name)
					fmt.Fprintf(out, "  -> %-17s %v of %s\n", name, relation.Cardinality, relation.Target.Name)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newExplainCommand() *cobra.Command {
	var (
		rawQuery string
		limit    int
		offset   int
	)

	cmd := &cobra.Command{
		Use:   "explain <entity>",
		Short: "Compile a request query string and print the resulting SQL and load plan",
		Long: `Compile a request query string against an entity without touching the
database. The query string uses the request grammar, for example:

  gcquery explain weblink -q 'filter[usuario.nome][ilike]=ana&sort_by=created_at&sort_dir=desc&include=usuario'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			registry, err := models.NewRegistry()
			if err != nil {
				return err
			}
			entity, err := findEntity(registry, args[0])
			if err != nil {
				return err
			}

			params, err := url.ParseQuery(rawQuery)
			if err != nil {
				return fmt.Errorf("parse query string: %w", err)
			}

			compiler := query.NewCompiler(log)
			plan := query.NewJoinPlan()
			allowed := entity.Relations

			predicates, err := compiler.CompileFilters(entity, query.ParseFilters(params, log), allowed, plan)
			if err != nil {
				return err
			}
			order, err := compiler.CompileSort(entity, params.Get("sort_by"), params.Get("sort_dir"), allowed, plan)
			if err != nil {
				return err
			}

			cq := &query.CompiledQuery{
				Entity:     entity,
				Predicates: predicates,
				Joins:      plan,
				Order:      order,
				Limit:      limit,
				Offset:     offset,
			}

			stmt, err := store.BuildSelect(cq)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "SQL: ", stmt.SQL.String())
			fmt.Fprintln(out, "vars:", stmt.Vars)

			loadPlan := query.NewPlanner(cfg.Load.Exclusions, log).Plan(entity, params.Get("include"))
			loaded := loadPlan.Loaded()
			if len(loaded) == 0 {
				fmt.Fprintln(out, "load: nothing")
			} else {
				fmt.Fprintln(out, "load:", strings.Join(loaded, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rawQuery, "query", "q", "", "raw request query string")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}
