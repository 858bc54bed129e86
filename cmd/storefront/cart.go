package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/nexus_market/internal/checkout"
	"github.com/Skotchmaster/nexus_market/internal/storefront"
)

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return uint(id), nil
}

func inCart(s storefront.State, id uint) bool {
	for _, it := range s.Cart {
		if it.ID == id {
			return true
		}
	}
	return false
}

func printCart(w io.Writer, s storefront.State) {
	if len(s.Cart) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	for _, it := range s.Cart {
		fmt.Fprintf(w, "%d  %s (%dx) - R$ %s\n", it.ID, it.Name, it.Quantity, checkout.FormatMoney(checkout.Subtotal(it)))
	}
	fmt.Fprintf(w, "Total: R$ %s\n", checkout.FormatMoney(s.CartTotal()))
}

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printCart(cmd.OutOrStdout(), a.store.State())
		},
	}

	add := &cobra.Command{
		Use:   "add PRODUCT_ID",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.loadProducts(cmd)
			if err != nil {
				return err
			}
			p, ok := s.FindProduct(id)
			if !ok {
				return fmt.Errorf("product %d not found", id)
			}
			printCart(cmd.OutOrStdout(), a.dispatch(cmd, storefront.AddedToCart{Product: p}))
			return nil
		},
	}

	quantity := func(use, short string, delta int) *cobra.Command {
		return &cobra.Command{
			Use:   use + " PRODUCT_ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if !inCart(a.store.State(), id) {
					return fmt.Errorf("product %d is not in the cart", id)
				}
				printCart(cmd.OutOrStdout(), a.dispatch(cmd, storefront.QuantityChanged{ProductID: id, Delta: delta}))
				return nil
			},
		}
	}

	rm := &cobra.Command{
		Use:     "rm PRODUCT_ID",
		Aliases: []string{"remove"},
		Short:   "Remove a product from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), a.dispatch(cmd, storefront.RemovedFromCart{ProductID: id}))
			return nil
		},
	}

	cmd.AddCommand(show, add,
		quantity("inc", "Increase quantity by one", 1),
		quantity("dec", "Decrease quantity by one (never below 1)", -1),
		rm,
	)
	return cmd
}
