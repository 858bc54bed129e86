package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/nexus_market/internal/models"
	"github.com/Skotchmaster/nexus_market/pkg/marketclient"
)

func newAdminCmd(a *app) *cobra.Command {
	var adminPassword string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Add or remove catalog products",
	}
	cmd.PersistentFlags().StringVar(&adminPassword, "admin-password", "", "shared admin secret (defaults to the saved admin session)")

	auth := func() (marketclient.Auth, error) {
		s := a.store.State()
		creds := marketclient.Auth{AdminPassword: adminPassword}
		if s.IsAdmin() {
			creds.Token = s.Token
		}
		if creds.Token == "" && creds.AdminPassword == "" {
			return creds, errors.New("log in as an admin or pass --admin-password")
		}
		return creds, nil
	}

	var p marketclient.NewProduct
	var category string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := auth()
			if err != nil {
				return err
			}
			p.Category = models.Category(category)
			id, err := a.client.CreateProduct(cmd.Context(), creds, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product added! id=%d\n", id)
			return nil
		},
	}
	add.Flags().StringVar(&p.Name, "name", "", "product name")
	add.Flags().Float64Var(&p.Price, "price", 0, "unit price")
	add.Flags().StringVar(&p.Description, "description", "", "description")
	add.Flags().StringVar(&p.Image, "image", "", "image URL (ibb.co share links are resolved)")
	add.Flags().StringVar(&category, "category", string(models.CategoryCPM), "CPM or Marketplace")
	add.Flags().StringVar(&p.WhatsAppNumber, "whatsapp", "", "seller WhatsApp number")
	_ = add.MarkFlagRequired("name")

	rm := &cobra.Command{
		Use:   "rm PRODUCT_ID",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			creds, err := auth()
			if err != nil {
				return err
			}
			if err := a.client.DeleteProduct(cmd.Context(), creds, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}
