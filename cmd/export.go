package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"forest-tools/metaio"
	"forest-tools/metatools"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [manifest] [output_path]",
	Short: "Convert a manifest to parquet, CSV or SQLite",
	Long: `Flatten a manifest to one row per image, repeating the group columns, and
	write it as parquet or semicolon separated CSV. Rows carry the bounding box,
	the S2 cell token of its centre and its area in square metres. SQLite output
	keeps groups and images in separate tables.

	Options:
		--format: parquet, csv or sqlite. Guessed from the output extension if unset.
		--s2Lvl:  S2 cell level of the centre cell token.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := metatools.ReadManifest(args[0])
		if err != nil {
			return err
		}
		s2Lvl := viper.GetInt("s2Lvl")
		format := exportFormat(viper.GetString("exportFormat"), args[1])
		logrus.Infof("Exporting %d groups to %s as %s", len(records), args[1], format)

		switch format {
		case "parquet":
			return metaio.WriteParquet(metaio.Flatten(records, s2Lvl), args[1])
		case "csv":
			return metaio.WriteCSV(metaio.Flatten(records, s2Lvl), args[1])
		case "sqlite":
			return metaio.WriteSQLite(cmd.Context(), records, args[1], s2Lvl)
		}
		return fmt.Errorf("unknown export format %q", format)
	},
}

func exportFormat(flag, path string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv"
	case ".sqlite", ".db":
		return "sqlite"
	}
	return "parquet"
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("format", "f", "", "Output format: parquet, csv or sqlite")
	bindFlag(exportCmd, "exportFormat", "format")
	exportCmd.Flags().IntP("s2Lvl", "l", 11, "S2 cell level of the bounding box centre token")
	bindFlag(exportCmd, "s2Lvl", "s2Lvl")
}
