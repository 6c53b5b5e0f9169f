/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var Verbose bool
var Debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "forest-tools",
	Short: "Tools for building and serving SSL4EO-EU Forest metadata",
	Long: `Build the meta.jsonl manifest of an SSL4EO-EU Forest dataset tree and
	work with it:
	./forest-tools buildmanifest [opts] [dataset_root]
	./forest-tools export [opts] [manifest] [output_path]
	./forest-tools inspect [manifest]
	./forest-tools croissant
	./forest-tools fetch [group_id]
	./forest-tools preview [group_id] [output.png]
	./forest-tools serve`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setLogLevels()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func setLogLevels() {
	if viper.GetBool("debug") {
		logrus.SetLevel(logrus.DebugLevel)
	} else if viper.GetBool("verbose") {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// initConfig reads a .env file, the config file and FOREST_ environment variables.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".forest-tools")
	}

	viper.SetEnvPrefix("forest")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logrus.Debugf("Using config file %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logrus.Fatalf("Reading config %s: %v", cfgFile, err)
	}
}

// bindFlag binds a flag to a viper key, exiting like the rest of the flag setup
// when that fails.
func bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.Flags().Lookup(flag)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(flag)
	}
	if err := viper.BindPFlag(key, f); err != nil {
		logrus.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.forest-tools.yaml)")
	flags.BoolVarP(&Verbose, "verbose", "v", false, "Verbose output")
	bindFlag(rootCmd, "verbose", "verbose")
	flags.BoolVarP(&Debug, "debug", "d", false, "Debug output")
	bindFlag(rootCmd, "debug", "debug")

	flags.IntP("numWorkers", "n", runtime.NumCPU(), "Number of workers to spawn for parallel processing")
	bindFlag(rootCmd, "numWorkers", "numWorkers")

	// remote dataset access
	flags.String("manifest", "", "Local manifest to read instead of fetching the remote one")
	bindFlag(rootCmd, "manifest", "manifest")
	flags.String("localRoot", "", "Local dataset root; when set no files are fetched")
	bindFlag(rootCmd, "localRoot", "localRoot")
	flags.String("cacheDir", defaultCacheDir(), "Directory for fetched dataset files")
	bindFlag(rootCmd, "cacheDir", "cacheDir")
	flags.String("endpoint", "https://huggingface.co", "Dataset hub endpoint")
	bindFlag(rootCmd, "endpoint", "endpoint")
	flags.String("repo", "dm4eo/ssl4eo_eu_forest", "Dataset repository")
	bindFlag(rootCmd, "repo", "repo")
	flags.String("revision", "v1.0", "Dataset revision")
	bindFlag(rootCmd, "revision", "revision")
	flags.String("token", "", "Bearer token for the dataset hub (or FOREST_TOKEN)")
	bindFlag(rootCmd, "token", "token")
	flags.String("infoFile", "", "TOML file overriding the built-in dataset description")
	bindFlag(rootCmd, "infoFile", "infoFile")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".forest-tools-cache"
	}
	return filepath.Join(dir, "forest-tools")
}
