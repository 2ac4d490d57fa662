package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write system settings",
	}
	cmd.AddCommand(newSettingsListCommand(rootOpts))
	cmd.AddCommand(newSettingsSetCommand(rootOpts))
	cmd.AddCommand(newSettingsPublicCommand(rootOpts))
	return cmd
}

func newSettingsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all system settings (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			list, err := env.settings.Settings(cmd.Context())
			if err != nil {
				return err
			}
			for _, st := range list {
				fmt.Printf("%-32s %s\n", st.SettingKey, st.SettingValue)
			}
			return nil
		},
	}
}

func newSettingsSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a system setting (admin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			updated, err := env.settings.UpdateSetting(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", updated.SettingKey, updated.SettingValue)
			return nil
		},
	}
}

func newSettingsPublicCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "public",
		Short: "Show the public settings snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			// Needs no token.
			if err := env.settings.LoadPublic(cmd.Context()); err != nil {
				return err
			}
			enabled, _ := env.settings.ImageProtection()
			fmt.Printf("image protection: %v\n", enabled)
			return nil
		},
	}
}
