package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/nexus_market/internal/checkout"
)

func newCheckoutCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Print the WhatsApp order link for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cart := a.store.State().Cart

			if all {
				groups := checkout.Groups(cart)
				if len(groups) == 0 {
					return errors.New("cart is empty")
				}
				for _, g := range groups {
					o := checkout.ComposeGroup(g)
					fmt.Fprintf(out, "%s (R$ %s)\n%s\n", displaySeller(o.Seller), checkout.FormatMoney(o.Total), o.Link)
				}
				return nil
			}

			order, ok := checkout.Compose(cart)
			if !ok {
				return errors.New("cart is empty")
			}
			fmt.Fprintln(out, order.Link)
			if len(order.Skipped) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: %d other seller(s) not included; run with --all for one link per seller\n", len(order.Skipped))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "print one link per seller")
	return cmd
}

func displaySeller(s string) string {
	if s == "" {
		return "(no contact)"
	}
	return s
}
