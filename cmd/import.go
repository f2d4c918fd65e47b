package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wevote/dedupe-cli/internal/politician"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create the politician, pairing and reference tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withStore(ctx, func(st politician.Store) error {
				if err := st.Migrate(ctx); err != nil {
					return eris.Wrap(err, "migrate")
				}
				zap.L().Info("migrate complete", zap.String("driver", cfg.Store.Driver))
				return nil
			})
		},
	}

	importFixturePath string

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Load politicians and references from a YAML fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			f, err := os.Open(importFixturePath)
			if err != nil {
				return eris.Wrap(err, "open fixture")
			}
			defer f.Close() //nolint:errcheck

			fx, err := politician.ParseFixture(f)
			if err != nil {
				return eris.Wrap(err, "parse fixture")
			}

			return withStore(ctx, func(st politician.Store) error {
				if err := st.Migrate(ctx); err != nil {
					return eris.Wrap(err, "migrate")
				}
				stats, err := politician.LoadFixture(ctx, st, fx)
				if err != nil {
					return eris.Wrap(err, "import fixture")
				}
				zap.L().Info("import complete",
					zap.String("fixture", importFixturePath),
					zap.Int("politicians", stats.Politicians),
					zap.Int("references", stats.References),
					zap.Int("not_duplicates", stats.NotDuplicates),
				)
				return nil
			})
		},
	}
)

func init() {
	importCmd.Flags().StringVar(&importFixturePath, "fixture", "", "path to YAML fixture (required)")
	_ = importCmd.MarkFlagRequired("fixture")
	rootCmd.AddCommand(migrateCmd, importCmd)
}
