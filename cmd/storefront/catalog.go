package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/nexus_market/internal/checkout"
	"github.com/Skotchmaster/nexus_market/internal/models"
	"github.com/Skotchmaster/nexus_market/internal/storefront"
)

func printProducts(w io.Writer, items []models.Product) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no products")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSELLER")
	for _, p := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\tR$ %s\t%s\n",
			p.ID, p.Name, p.Category, checkout.FormatMoney(decimal.NewFromFloat(p.Price)), p.WhatsAppNumber)
	}
	tw.Flush()
}

func newProductsCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally filtered by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat := models.Category(category)
			switch cat {
			case models.CategoryAll, models.CategoryCPM, models.CategoryMarketplace:
			default:
				return fmt.Errorf("unknown category %q (want All, CPM or Marketplace)", category)
			}
			if _, err := a.loadProducts(cmd); err != nil {
				return err
			}
			s := a.dispatch(cmd, storefront.CategorySelected{Category: cat})
			printProducts(cmd.OutOrStdout(), s.VisibleProducts())
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", string(models.CategoryAll), "All, CPM or Marketplace")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Search products by name and description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.SearchProducts(cmd.Context(), strings.Join(args, " "), page, size)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), res.Data)
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d (%d results)\n", res.Meta.Page, res.Meta.TotalPages, res.Meta.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&size, "size", 10, "results per page")
	return cmd
}
