package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/suipic/client-go/internal/infra/api"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			if username == "" {
				username, err = prompt("Username: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = prompt("Password: ")
				if err != nil {
					return err
				}
			}

			resp, err := env.client.Login(cmd.Context(), api.LoginRequest{
				Username: username,
				Password: password,
			})
			if err != nil {
				return err
			}
			if err := env.session.SetAuth(resp.User, resp.Token); err != nil {
				return err
			}

			fmt.Printf("Signed in as %s (%s)\n", resp.User.Username, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")

	return cmd
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	var email, username, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			if username == "" {
				username, err = prompt("Username: ")
				if err != nil {
					return err
				}
			}
			if email == "" {
				email, err = prompt("Email: ")
				if err != nil {
					return err
				}
			}
			if password == "" {
				password, err = prompt("Password: ")
				if err != nil {
					return err
				}
			}

			resp, err := env.client.Register(cmd.Context(), api.RegisterRequest{
				Email:    email,
				Username: username,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return err
			}
			if err := env.session.SetAuth(resp.User, resp.Token); err != nil {
				return err
			}

			fmt.Printf("Registered and signed in as %s (%s)\n", resp.User.Username, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&role, "role", api.RoleClient, "account role")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			// Revoke the token server-side first. The local session is
			// cleared even when revocation fails.
			if env.session.Authenticated() {
				if err := env.client.Logout(cmd.Context()); err != nil {
					log.Warn().Err(err).Msg("Server-side logout failed")
				}
			}

			if err := env.session.ClearAuth(); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a fresh one",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			token := env.session.Token()
			if token == "" {
				return fmt.Errorf("not signed in")
			}

			resp, err := env.client.RefreshToken(cmd.Context(), token)
			if err != nil {
				return err
			}
			if err := env.session.SetAuth(resp.User, resp.Token); err != nil {
				return err
			}

			fmt.Printf("Session refreshed for %s\n", resp.User.Username)
			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			user, ok := env.session.CurrentUser()
			if !ok {
				fmt.Println("Not signed in")
				return nil
			}

			if remote {
				user, err = env.client.CurrentUser(cmd.Context())
				if err != nil {
					return err
				}
				if err := env.session.UpdateUser(user); err != nil {
					return err
				}
			}

			fmt.Printf("%s (%s)\n", user.Username, user.Role)
			if user.Email != "" {
				fmt.Printf("  email: %s\n", user.Email)
			}
			if user.FriendlyName != "" {
				fmt.Printf("  name:  %s\n", user.FriendlyName)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch the account from the server instead of the stored session")

	return cmd
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
