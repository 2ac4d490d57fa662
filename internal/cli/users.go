package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suipic/client-go/internal/infra/api"
)

// NewPhotographersCommand creates the photographers command group.
func NewPhotographersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photographers",
		Short: "Manage photographer accounts (admin)",
	}
	cmd.AddCommand(newPhotographersListCommand(rootOpts))
	cmd.AddCommand(newPhotographersCreateCommand(rootOpts))
	return cmd
}

func newPhotographersListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List photographer accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			list, err := env.catalog.Photographers(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No photographers")
				return nil
			}
			for _, p := range list {
				fmt.Printf("%4d  %s  <%s>\n", p.ID, p.Username, p.Email)
			}
			return nil
		},
	}
}

func newPhotographersCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a photographer account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			if email == "" {
				email, err = prompt("Email: ")
				if err != nil {
					return err
				}
			}

			resp, err := env.catalog.CreatePhotographer(cmd.Context(), api.CreatePhotographerRequest{
				Email:    email,
				Username: args[0],
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created photographer #%d %s\n", resp.User.ID, resp.User.Username)
			// Shown once; the server does not return it again.
			fmt.Printf("Initial password: %s\n", resp.Password)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")

	return cmd
}

// NewClientsCommand creates the clients command group.
func NewClientsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage client accounts (photographer)",
	}
	cmd.AddCommand(newClientsListCommand(rootOpts))
	cmd.AddCommand(newClientsSearchCommand(rootOpts))
	cmd.AddCommand(newClientsCreateCommand(rootOpts))
	return cmd
}

func newClientsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your client accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			clients, err := env.catalog.Clients(cmd.Context())
			if err != nil {
				return err
			}
			printClients(clients)
			return nil
		},
	}
}

func newClientsSearchCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search clients by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			clients, err := env.catalog.SearchClients(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			printClients(clients)
			return nil
		},
	}
}

func newClientsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password, friendlyName string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a client account or link an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			client, err := env.catalog.CreateOrLinkClient(cmd.Context(), api.CreateClientRequest{
				Username:     args[0],
				Email:        email,
				Password:     password,
				FriendlyName: friendlyName,
			})
			if err != nil {
				return err
			}

			if client.IsShared {
				fmt.Printf("Linked existing client #%d %s\n", client.ID, client.Username)
			} else {
				fmt.Printf("Created client #%d %s\n", client.ID, client.Username)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&friendlyName, "name", "", "display name")

	return cmd
}

func printClients(clients []api.ClientAccount) {
	if len(clients) == 0 {
		fmt.Println("No clients")
		return
	}
	for _, c := range clients {
		line := fmt.Sprintf("%4d  %s", c.ID, c.Username)
		if c.FriendlyName != "" {
			line += "  (" + c.FriendlyName + ")"
		}
		if c.IsShared {
			line += "  [shared]"
		}
		fmt.Println(line)
	}
}
