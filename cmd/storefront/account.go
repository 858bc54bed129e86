package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/nexus_market/internal/storefront"
)

func newRegisterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register USERNAME PASSWORD",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Register(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful! Please login.")
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login USERNAME PASSWORD",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			s := a.dispatch(cmd, storefront.LoggedIn{User: res.User, Token: res.Token})
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", s.Session.Username, s.Session.Role)
			return nil
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			a.dispatch(cmd, storefront.LoggedOut{})
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			s := a.store.State()
			if s.Session == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s.Session.Username, s.Session.Role)
		},
	}
}

func newThemeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "theme",
		Short: "Toggle dark mode",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			s := a.dispatch(cmd, storefront.ThemeToggled{})
			mode := "light"
			if s.DarkMode {
				mode = "dark"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\n", mode)
		},
	}
}
