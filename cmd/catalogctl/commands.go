package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phenrril/catalogo/internal/adapters/export"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the catalog tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()
		if err := a.MigrateAndSeed(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrated")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a demo product when the catalog is empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()
		slug, err := a.SeedDemo(cmd.Context())
		if err != nil {
			return err
		}
		if slug == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "catalog not empty, nothing seeded")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", slug)
		return nil
	},
}

var (
	planSlug string
	planJSON bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what regenerating a product's variants would create and delete",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()
		plan, err := a.VariantUC.PlanStored(cmd.Context(), planSlug)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if planJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		}
		st, _, err := a.VariantUC.LoadEditor(cmd.Context(), planSlug)
		if err != nil {
			return err
		}
		names := st.Config.Names()
		fmt.Fprintf(out, "%s: %d variants, %d new, %d kept, %d orphaned\n",
			planSlug, len(plan.Variants), plan.Created, plan.Kept, len(plan.Orphans))
		for _, v := range plan.Variants {
			mark := "="
			if !v.Persisted() {
				mark = "+"
			}
			fmt.Fprintf(out, "  %s %s\n", mark, v.Attributes.Label(names))
		}
		for _, v := range plan.Orphans {
			fmt.Fprintf(out, "  - %s\n", v.Attributes.Label(names))
		}
		return nil
	},
}

var (
	exportSlug string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a product's variants to an xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()
		st, p, err := a.VariantUC.LoadEditor(cmd.Context(), exportSlug)
		if err != nil {
			return err
		}
		path := exportOut
		if path == "" {
			path = p.Slug + "-variants.xlsx"
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := export.WriteVariants(f, p, st.Config.Names(), st.Variants); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d variants to %s\n", len(st.Variants), path)
		return nil
	},
}

var (
	stockSKU       string
	stockWarehouse string
	stockQty       int
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Set the on-hand quantity of a variant, addressed by SKU",
	RunE: func(cmd *cobra.Command, args []string) error {
		if stockQty < 0 {
			return fmt.Errorf("quantity must not be negative")
		}
		a, closeFn, err := openApp()
		if err != nil {
			return err
		}
		defer closeFn()
		_, v, err := a.ProductUC.SearchBySKU(cmd.Context(), stockSKU)
		if err != nil {
			return fmt.Errorf("sku %s: %w", stockSKU, err)
		}
		wh := stockWarehouse
		if wh == "" {
			wh = a.StockUC.Warehouse
		}
		if err := a.Stock.SetQuantity(cmd.Context(), v.ID, wh, stockQty); err != nil {
			return err
		}
		if err := a.StockCache.Invalidate(cmd.Context(), v.ID, wh); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s@%s = %d\n", stockSKU, wh, stockQty)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planSlug, "slug", "", "Product slug (required)")
	planCmd.MarkFlagRequired("slug")
	planCmd.Flags().BoolVar(&planJSON, "json", false, "Print the plan as JSON")

	exportCmd.Flags().StringVar(&exportSlug, "slug", "", "Product slug (required)")
	exportCmd.MarkFlagRequired("slug")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default <slug>-variants.xlsx)")

	stockCmd.Flags().StringVar(&stockSKU, "sku", "", "Variant SKU (required)")
	stockCmd.MarkFlagRequired("sku")
	stockCmd.Flags().StringVarP(&stockWarehouse, "warehouse", "w", "", "Warehouse id (default DEFAULT_WAREHOUSE)")
	stockCmd.Flags().IntVar(&stockQty, "qty", 0, "Quantity on hand")

	rootCmd.AddCommand(migrateCmd, seedCmd, planCmd, exportCmd, stockCmd)
}
