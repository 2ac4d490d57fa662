package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewThemeCommand creates the theme command.
func NewThemeCommand(rootOpts *RootOptions) *cobra.Command {
	var toggle bool

	cmd := &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show or change the UI theme preference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()

			switch {
			case toggle:
				next, err := env.session.ToggleTheme()
				if err != nil {
					return err
				}
				fmt.Println(next)
			case len(args) == 1:
				if err := env.session.SetTheme(args[0]); err != nil {
					return err
				}
				fmt.Println(args[0])
			default:
				fmt.Println(env.session.Theme())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&toggle, "toggle", false, "flip between light and dark")
	return cmd
}
