package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/suipic/client-go/internal/infra/api"
)

// NewAlbumsCommand creates the albums command group.
func NewAlbumsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "albums",
		Short: "Manage albums",
	}
	cmd.AddCommand(newAlbumsListCommand(rootOpts))
	cmd.AddCommand(newAlbumsShowCommand(rootOpts))
	cmd.AddCommand(newAlbumsCreateCommand(rootOpts))
	cmd.AddCommand(newAlbumsUpdateCommand(rootOpts))
	cmd.AddCommand(newAlbumsDeleteCommand(rootOpts))
	cmd.AddCommand(newAlbumsAssignCommand(rootOpts))
	return cmd
}

func newAlbumsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all albums",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			albums, err := env.catalog.Albums(cmd.Context())
			if err != nil {
				return err
			}
			if len(albums) == 0 {
				fmt.Println("No albums")
				return nil
			}
			for _, a := range albums {
				line := fmt.Sprintf("%4d  %s", a.ID, a.Title)
				if a.Location != "" {
					line += "  (" + a.Location + ")"
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newAlbumsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <album-id>",
		Short: "Show one album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			album, err := env.catalog.Album(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("#%d %s\n", album.ID, album.Title)
			if album.Description != "" {
				fmt.Printf("  %s\n", album.Description)
			}
			if album.Location != "" {
				fmt.Printf("  location: %s\n", album.Location)
			}
			if album.DateTaken != "" {
				fmt.Printf("  taken:    %s\n", album.DateTaken)
			}
			for k, v := range album.CustomFields {
				fmt.Printf("  %s: %v\n", k, v)
			}
			return nil
		},
	}
}

func newAlbumsCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var description, location, dateTaken string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create an album",
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

			album, err := env.catalog.CreateAlbum(cmd.Context(), api.CreateAlbumRequest{
				Title:       args[0],
				Description: description,
				Location:    location,
				DateTaken:   dateTaken,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created album #%d %s\n", album.ID, album.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "album description")
	cmd.Flags().StringVar(&location, "location", "", "where the photos were taken")
	cmd.Flags().StringVar(&dateTaken, "date", "", "date the photos were taken (YYYY-MM-DD)")

	return cmd
}

func newAlbumsUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var title, description, location string

	cmd := &cobra.Command{
		Use:   "update <album-id>",
		Short: "Update album fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			patch := api.AlbumPatch{}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("location") {
				patch.Location = &location
			}

			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			album, err := env.catalog.UpdateAlbum(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Printf("Updated album #%d %s\n", album.ID, album.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&location, "location", "", "new location")

	return cmd
}

func newAlbumsDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <album-id>",
		Short: "Delete an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			if err := env.catalog.DeleteAlbum(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted album #%d\n", id)
			return nil
		},
	}
}

func newAlbumsAssignCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <album-id> <user-id>...",
		Short: "Replace the users assigned to an album",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			albumID, err := parseID(args[0])
			if err != nil {
				return err
			}
			userIDs := make([]int, 0, len(args)-1)
			for _, arg := range args[1:] {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				userIDs = append(userIDs, id)
			}

			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			if err := env.catalog.AssignUsers(cmd.Context(), albumID, userIDs); err != nil {
				return err
			}
			fmt.Printf("Assigned %d user(s) to album #%d\n", len(userIDs), albumID)
			return nil
		},
	}
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
