package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suipic/client-go/internal/infra/api"
)

// NewCommentsCommand creates the comments command group.
func NewCommentsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments",
		Short: "Read and write photo comments",
	}
	cmd.AddCommand(newCommentsListCommand(rootOpts))
	cmd.AddCommand(newCommentsAddCommand(rootOpts))
	return cmd
}

func newCommentsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <photo-id>",
		Short: "List a photo's comment thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			photoID, err := parseID(args[0])
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

			comments, err := env.catalog.Comments(cmd.Context(), photoID)
			if err != nil {
				return err
			}
			if len(comments) == 0 {
				fmt.Println("No comments")
				return nil
			}
			printThread(comments, 0)
			return nil
		},
	}
}

func printThread(comments []api.Comment, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range comments {
		fmt.Printf("%s#%d %s: %s\n", indent, c.ID, c.User.Username, c.Text)
		printThread(c.Replies, depth+1)
	}
}

func newCommentsAddCommand(rootOpts *RootOptions) *cobra.Command {
	var replyTo int

	cmd := &cobra.Command{
		Use:   "add <photo-id> <text>",
		Short: "Comment on a photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			photoID, err := parseID(args[0])
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

			comment, err := env.catalog.AddComment(cmd.Context(), photoID, args[1], replyTo)
			if err != nil {
				return err
			}
			fmt.Printf("Posted comment #%d\n", comment.ID)
			return nil
		},
	}

	cmd.Flags().IntVar(&replyTo, "reply-to", 0, "comment id to reply to")
	return cmd
}
