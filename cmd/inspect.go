package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"forest-tools/metatools"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [manifest]",
	Short: "Summarize a manifest",
	Long: `Print group and image counts, images per season and per tile, and the
	spread of images per group. With --groups every group is listed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := metatools.ReadManifest(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, renderSummary(metatools.Summarize(records)))
		if viper.GetBool("inspectGroups") {
			fmt.Fprintln(out, renderGroups(records))
		}
		return nil
	},
}

func renderSummary(s metatools.Summary) string {
	rows := [][]string{
		{"Groups", strconv.Itoa(s.Groups)},
		{"Images", strconv.Itoa(s.Images)},
		{"Groups with mismatched dimensions", strconv.Itoa(s.MismatchedGroups)},
		{"Groups without images", strconv.Itoa(s.EmptyGroups)},
		{"Images per group (mean)", strconv.FormatFloat(s.MeanImagesPerGroup, 'f', 2, 64)},
		{"Images per group (min)", strconv.FormatFloat(s.MinImagesPerGroup, 'f', 0, 64)},
		{"Images per group (max)", strconv.FormatFloat(s.MaxImagesPerGroup, 'f', 0, 64)},
	}
	title := cases.Title(language.Und)
	for _, season := range metatools.Seasons {
		rows = append(rows, []string{title.String(string(season)) + " images", strconv.Itoa(s.ImagesPerSeason[season])})
	}

	tiles := make([]string, 0, len(s.Tiles))
	for tile := range s.Tiles {
		tiles = append(tiles, tile)
	}
	sort.Strings(tiles)
	for _, tile := range tiles {
		rows = append(rows, []string{"Tile " + tile, strconv.Itoa(s.Tiles[tile])})
	}
	return renderTable("Manifest summary", []string{"Metric", "Value"}, rows, 1)
}

func renderGroups(records []metatools.GroupRecord) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		bbox := rec.BoundingBox
		rows = append(rows, []string{
			rec.GroupID,
			fmt.Sprintf("%.4f %.4f %.4f %.4f", bbox[0], bbox[1], bbox[2], bbox[3]),
			fmt.Sprintf("%dx%d", rec.MaskWidth, rec.MaskHeight),
			strconv.Itoa(len(rec.Images)),
			strconv.FormatBool(rec.DimensionsMatch),
		})
	}
	return renderTable("Groups",
		[]string{"Group", "Bounding box", "Mask", "Images", "Dimensions match"},
		rows, 2, 3)
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().BoolP("groups", "g", false, "List every group")
	bindFlag(inspectCmd, "inspectGroups", "groups")
}
