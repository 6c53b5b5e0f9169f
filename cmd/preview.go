package cmd

import (
	"errors"
	"fmt"
	"image"
	"os"

	"forest-tools/dataset"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview [group_id] [output.png]",
	Short: "Render an RGB preview of one image of a group, or its mask",
	Long: `Render the true-colour composite (Sentinel-2 B4, B3, B2 stretched between
	their 2nd and 98th percentiles) of one image of a group as PNG.

	Options:
		--image: Index of the image in the group. A negative index renders the mask.
		--size:  Fit the preview in a square of this many pixels. 0 keeps full size.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		ds, err := openDataset(ctx)
		if err != nil {
			return err
		}
		_, i, ok := ds.ByID(args[0])
		if !ok {
			return fmt.Errorf("%w %q", dataset.ErrUnknownGroup, args[0])
		}

		var img image.Image
		if index := viper.GetInt("previewImage"); index < 0 {
			mask, err := ds.LoadMask(ctx, i)
			if err != nil {
				return err
			}
			if img, err = dataset.MaskImage(mask); err != nil {
				return err
			}
		} else {
			raster, err := ds.LoadImage(ctx, i, index)
			if err != nil {
				return err
			}
			if img, err = dataset.RGB(raster); err != nil {
				return err
			}
		}
		if size := viper.GetUint("previewSize"); size > 0 {
			img = dataset.Thumbnail(img, size)
		}

		f, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		if err := dataset.WritePNG(f, img); err != nil {
			return err
		}
		logrus.Infof("Wrote %s", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().IntP("image", "i", 0, "Index of the image in the group, negative for the mask")
	bindFlag(previewCmd, "previewImage", "image")
	previewCmd.Flags().UintP("size", "s", 0, "Fit the preview in a square of this many pixels")
	bindFlag(previewCmd, "previewSize", "size")
}
