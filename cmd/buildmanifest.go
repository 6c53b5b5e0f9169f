package cmd

import (
	"fmt"

	"forest-tools/metatools"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// buildmanifestCmd represents the buildmanifest command
var buildmanifestCmd = &cobra.Command{
	Use:   "buildmanifest [dataset_root]",
	Short: "Scan a dataset tree and write its meta.jsonl manifest",
	Long: `Walk <root>/images/<group_id>/<start>_<end>_<tile>/all_bands.tif and
	<root>/masks/<group_id>/mask.tif, consolidating every group into one JSON line
	with the mask's WGS84 bounding box and dimensions and one entry per usable
	image. The manifest is written to <root>/meta.jsonl.

	Groups without a readable mask are left out, as are images whose directory
	name or raster cannot be parsed. Use --skipLog to keep a record of them.

	Options:
		--numWorkers: Number of groups processed in parallel.
		--output:     Manifest file name, relative to the dataset root.
		--skipLog:    Optional JSONL file listing every skipped group and image.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := metatools.ConfigOpts{
			NumWorkers: viper.GetInt("numWorkers"),
			Layout: metatools.Layout{
				ImagesDir: viper.GetString("imagesDir"),
				MasksDir:  viper.GetString("masksDir"),
				ImageFile: viper.GetString("imageFile"),
				MaskFile:  viper.GetString("maskFile"),
			},
			ManifestName: viper.GetString("manifestName"),
			SkipLog:      viper.GetString("skipLog"),
			NewProgress:  newProgress("Processing groups"),
		}

		summary, err := metatools.BuildManifest(args[0], opts)
		if err != nil {
			return err
		}
		if summary.ExcludedGroups > 0 || summary.SkippedImages > 0 {
			logrus.WithField("run_id", summary.RunID).Warnf(
				"%d groups excluded, %d images skipped", summary.ExcludedGroups, summary.SkippedImages)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d of %d groups to %s\n",
			summary.Records, summary.Groups, summary.ManifestPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildmanifestCmd)

	flags := buildmanifestCmd.Flags()
	flags.StringP("output", "o", metatools.DefaultManifestName, "Manifest file name, relative to the dataset root")
	bindFlag(buildmanifestCmd, "manifestName", "output")
	flags.String("skipLog", "", "Write skipped groups and images to this JSONL file")
	bindFlag(buildmanifestCmd, "skipLog", "skipLog")
	flags.String("imagesDir", metatools.DefaultImagesDir, "Images directory under the dataset root")
	bindFlag(buildmanifestCmd, "imagesDir", "imagesDir")
	flags.String("masksDir", metatools.DefaultMasksDir, "Masks directory under the dataset root")
	bindFlag(buildmanifestCmd, "masksDir", "masksDir")
	flags.String("imageFile", metatools.DefaultImageFile, "Raster file name inside each acquisition directory")
	bindFlag(buildmanifestCmd, "imageFile", "imageFile")
	flags.String("maskFile", metatools.DefaultMaskFile, "Mask file name inside each group's mask directory")
	bindFlag(buildmanifestCmd, "maskFile", "maskFile")
}
