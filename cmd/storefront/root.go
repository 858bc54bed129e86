package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/nexus_market/internal/storefront"
	pkgconfig "github.com/Skotchmaster/nexus_market/pkg/config"
	"github.com/Skotchmaster/nexus_market/pkg/marketclient"
)

type app struct {
	apiURL    string
	statePath string

	client *marketclient.Client
	store  *storefront.Store
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "nexus", "storefront.json")
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Browse the Nexus catalog, keep a cart and check out over WhatsApp",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.client = marketclient.NewClient(a.apiURL)
			a.store = storefront.NewStore(storefront.NewFileStorage(a.statePath))
			if err := a.store.Load(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: ignoring saved state: %v\n", err)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api",
		pkgconfig.EnvDefault("NEXUS_API_URL", "http://localhost:3000"), "marketplace API base URL")
	root.PersistentFlags().StringVar(&a.statePath, "state",
		pkgconfig.EnvDefault("NEXUS_STATE_FILE", defaultStatePath()), "file holding session, theme and cart")

	root.AddCommand(
		newProductsCmd(a),
		newSearchCmd(a),
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newThemeCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newAdminCmd(a),
	)
	return root
}

// dispatch reports persistence failures without failing the command; the
// action already took effect for this run.
func (a *app) dispatch(cmd *cobra.Command, act storefront.Action) storefront.State {
	s, err := a.store.Dispatch(act)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: state not saved: %v\n", err)
	}
	return s
}

func (a *app) loadProducts(cmd *cobra.Command) (storefront.State, error) {
	items, err := a.client.ListProducts(cmd.Context())
	if err != nil {
		return storefront.State{}, fmt.Errorf("load products: %w", err)
	}
	return a.dispatch(cmd, storefront.ProductsLoaded{Products: items}), nil
}
