package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/suipic/client-go/internal/domain/catalog"
	"github.com/suipic/client-go/internal/infra/api"
)

// NewPhotosCommand creates the photos command group.
func NewPhotosCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Manage photos",
	}
	cmd.AddCommand(newPhotosListCommand(rootOpts))
	cmd.AddCommand(newPhotosUploadCommand(rootOpts))
	cmd.AddCommand(newPhotosRateCommand(rootOpts))
	cmd.AddCommand(newPhotosStateCommand(rootOpts, "pick", api.StatePick))
	cmd.AddCommand(newPhotosStateCommand(rootOpts, "reject", api.StateReject))
	cmd.AddCommand(newPhotosTitleCommand(rootOpts))
	return cmd
}

func newPhotosListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <album-id>",
		Short: "List photos in an album",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			albumID, err := parseID(args[0])
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

			photos, err := env.catalog.Photos(cmd.Context(), albumID)
			if err != nil {
				return err
			}
			if len(photos) == 0 {
				fmt.Println("No photos")
				return nil
			}
			for _, p := range photos {
				fmt.Println(formatPhoto(p))
			}
			return nil
		},
	}
}

func formatPhoto(p api.Photo) string {
	title := p.Title
	if title == "" {
		title = p.Filename
	}
	line := fmt.Sprintf("%4d  %s", p.ID, title)
	if p.Stars > 0 {
		line += fmt.Sprintf("  %d*", p.Stars)
	}
	if p.PickRejectState != "" {
		line += "  [" + p.PickRejectState + "]"
	}
	return line
}

func newPhotosUploadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <album-id> <file>...",
		Short: "Upload photos to an album",
		Long: `Upload one or more image files to an album.

Each file is uploaded independently: when some uploads fail the others
still go through, and the failures are listed at the end.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			albumID, err := parseID(args[0])
			if err != nil {
				return err
			}

			files := make([]catalog.UploadFile, 0, len(args)-1)
			handles := make([]*os.File, 0, len(args)-1)
			defer func() {
				for _, h := range handles {
					h.Close()
				}
			}()
			for _, path := range args[1:] {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				handles = append(handles, f)
				files = append(files, catalog.UploadFile{Name: filepath.Base(path), Data: f})
			}

			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			uploaded, err := env.catalog.UploadPhotos(cmd.Context(), albumID, files)
			for _, p := range uploaded {
				fmt.Printf("Uploaded #%d %s\n", p.ID, p.Filename)
			}
			var batchErr *catalog.BatchUploadError
			if errors.As(err, &batchErr) {
				for _, f := range batchErr.Failures {
					fmt.Printf("Failed   %s: %s\n", f.Name, f.Message)
				}
			}
			return err
		},
	}
}

func newPhotosRateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rate <photo-id> <stars>",
		Short: "Set a photo's star rating (0-5)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			photoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			stars, err := parseStars(args[1])
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

			photo, err := env.catalog.UpdatePhoto(cmd.Context(), photoID, api.PhotoPatch{Stars: &stars})
			if err != nil {
				return err
			}
			fmt.Println(formatPhoto(photo))
			return nil
		},
	}
}

func newPhotosStateCommand(rootOpts *RootOptions, use, state string) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   use + " <photo-id>",
		Short: "Mark a photo as " + use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			photoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			value := state
			if clear {
				value = ""
			}

			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			photo, err := env.catalog.UpdatePhoto(cmd.Context(), photoID, api.PhotoPatch{PickRejectState: &value})
			if err != nil {
				return err
			}
			fmt.Println(formatPhoto(photo))
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "clear the "+use+" state instead")
	return cmd
}

func newPhotosTitleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "title <photo-id> <title>",
		Short: "Rename a photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			photoID, err := parseID(args[0])
			if err != nil {
				return err
			}
			title := args[1]

			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			photo, err := env.catalog.UpdatePhoto(cmd.Context(), photoID, api.PhotoPatch{Title: &title})
			if err != nil {
				return err
			}
			fmt.Println(formatPhoto(photo))
			return nil
		},
	}
}

func parseStars(arg string) (int, error) {
	stars, err := strconv.Atoi(arg)
	if err != nil || stars < 0 || stars > 5 {
		return 0, fmt.Errorf("stars must be between 0 and 5")
	}
	return stars, nil
}
