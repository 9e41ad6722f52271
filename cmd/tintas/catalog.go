package main

import (
	"context"
	"fmt"
	"tintas-bot/internal/catalog"
	"tintas-bot/internal/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var catalogDryRun bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the product catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create or update products from a YAML catalog",
	Long: `Reads a YAML catalog and upserts every product with its packages.

Example:
  tintas catalog import configs/catalog.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

func init() {
	catalogImportCmd.Flags().BoolVar(&catalogDryRun, "dry-run", false, "Validate and list the products without writing")
	catalogCmd.AddCommand(catalogImportCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	products, err := catalog.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if catalogDryRun {
		for _, p := range products {
			fmt.Fprintf(out, "%-12s %-32s %d package(s)\n", p.ID, p.Name, len(p.Packages))
		}
		return nil
	}

	return withStorage(cmd, func(ctx context.Context, s *storage.PostgresStorage) error {
		for _, p := range products {
			if err := s.UpsertProduct(ctx, p); err != nil {
				return err
			}
			zapLogger.Info("Product imported",
				zap.String("product_id", p.ID),
				zap.Int("packages", len(p.Packages)))
		}
		fmt.Fprintf(out, "Imported %d product(s)\n", len(products))
		return nil
	})
}
