package cmd

import (
	"context"

	"forest-tools/dataset"
	"forest-tools/fetch"

	"github.com/spf13/viper"
)

func datasetOptions() dataset.Options {
	return dataset.Options{
		LocalRoot:  viper.GetString("localRoot"),
		Fetcher:    fetch.New(viper.GetString("cacheDir"), viper.GetString("token")),
		Endpoint:   viper.GetString("endpoint"),
		Repo:       viper.GetString("repo"),
		Revision:   viper.GetString("revision"),
		NumWorkers: viper.GetInt("numWorkers"),
	}
}

// openDataset reads --manifest when given and fetches the repository's manifest
// otherwise.
func openDataset(ctx context.Context) (*dataset.Dataset, error) {
	opts := datasetOptions()
	if manifest := viper.GetString("manifest"); manifest != "" {
		return dataset.Open(manifest, opts)
	}
	return dataset.OpenRemote(ctx, opts)
}
