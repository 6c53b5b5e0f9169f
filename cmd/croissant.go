package cmd

import (
	"forest-tools/catalog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// croissantCmd represents the croissant command
var croissantCmd = &cobra.Command{
	Use:   "croissant",
	Short: "Print the dataset description and its Croissant field list",
	Long: `Print the dataset description, citation, license and the Croissant
	rendering of the manifest's fields as JSON or YAML. The built-in description
	can be overridden with --infoFile.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := catalog.LoadInfo(viper.GetString("infoFile"))
		if err != nil {
			return err
		}
		return catalog.Encode(cmd.OutOrStdout(), catalog.NewDocument(info), viper.GetString("croissantFormat"))
	},
}

func init() {
	rootCmd.AddCommand(croissantCmd)

	croissantCmd.Flags().StringP("format", "f", catalog.FormatJSON, "Output format, json or yaml")
	bindFlag(croissantCmd, "croissantFormat", "format")
}
