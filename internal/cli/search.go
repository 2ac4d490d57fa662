package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		albumID  int
		dateFrom string
		dateTo   string
		minStars int
		maxStars int
		state    string
		page     int
		showURL  bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search photos",
		Long: `Search photos by text, album, date range, star rating or pick state.

Either a query text or an album scope is required. The date bounds take
YYYY-MM-DD values; the upper bound includes the whole day.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(rootOpts)
			if err != nil {
				return err
			}
			defer env.Close()
			if err := env.requireAuth(); err != nil {
				return err
			}

			p := env.search
			if len(args) == 1 {
				p.SetQuery(args[0])
			}
			if cmd.Flags().Changed("album") {
				p.SetAlbum(&albumID)
			}
			p.SetDateRange(dateFrom, dateTo)

			var minp, maxp *int
			if cmd.Flags().Changed("min-stars") {
				minp = &minStars
			}
			if cmd.Flags().Changed("max-stars") {
				maxp = &maxStars
			}
			p.SetStarRange(minp, maxp)
			p.SetState(state)
			p.Flush()
			p.SetPage(page)

			if !p.Enabled() {
				return fmt.Errorf("a query text or --album is required")
			}

			result, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			if showURL {
				fmt.Printf("?%s\n", p.EncodeQuery().Encode())
			}
			fmt.Printf("%d result(s), page %d/%d\n", result.Total, p.Pagination().Page, p.TotalPages())
			for _, photo := range result.Photos {
				fmt.Println(formatPhoto(photo))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&albumID, "album", 0, "restrict to one album")
	cmd.Flags().StringVar(&dateFrom, "from", "", "earliest date taken (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateTo, "to", "", "latest date taken (YYYY-MM-DD)")
	cmd.Flags().IntVar(&minStars, "min-stars", 0, "minimum star rating")
	cmd.Flags().IntVar(&maxStars, "max-stars", 5, "maximum star rating")
	cmd.Flags().StringVar(&state, "state", "", "pick state (pick|reject)")
	cmd.Flags().IntVar(&page, "page", 1, "result page")
	cmd.Flags().BoolVar(&showURL, "url", false, "print the shareable URL query form")

	return cmd
}
