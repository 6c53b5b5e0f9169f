package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [group_id]...",
	Short: "Download the mask and images of groups into the cache",
	Long: `Download the mask and every image of the given groups into --cacheDir and
	print the shape of what was loaded. Files already cached are not downloaded
	again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ds, err := openDataset(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, id := range args {
			sample, err := ds.GetByID(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s: mask %dx%d, %d images\n",
				sample.GroupID, sample.Mask.Width, sample.Mask.Height, len(sample.Images))
			for _, meta := range sample.Metadata {
				fmt.Fprintf(out, "  %-6s %s %s %d bands %dx%d\n",
					meta.Season, meta.TimestampStart, meta.TileID, meta.Bands, meta.Width, meta.Height)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
