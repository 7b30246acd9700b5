package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ai-advisor/internal/advisor/repository"
	"ai-advisor/internal/common/database"
)

func MigrateCmd(g *globalFlags) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema and create the article index",
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.inMemory {
				return fmt.Errorf("migrate needs a database; drop --in-memory")
			}
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			schema, err := os.ReadFile(schemaPath)
			if err != nil {
				return err
			}

			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := pg.Migrate(cmd.Context(), string(schema)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", schemaPath)

			if !cfg.Database.Elasticsearch.Enabled() {
				return nil
			}
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
			if err != nil {
				return err
			}
			index := cfg.Database.Elasticsearch.ArticleIndex
			created, err := es.EnsureIndex(cmd.Context(), index, repository.ArticleIndexMapping)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created index %s\n", index)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "index %s exists\n", index)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "configs/schema.sql", "Path to the schema script")
	return cmd
}
