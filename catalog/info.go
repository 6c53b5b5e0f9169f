package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

//go:embed dataset.toml
var defaultInfo string

// Info is the descriptive part of the dataset catalog.
type Info struct {
	Description    string   `toml:"description" json:"description" yaml:"description"`
	Citation       string   `toml:"citation" json:"citation" yaml:"citation"`
	Homepage       string   `toml:"homepage" json:"homepage" yaml:"homepage"`
	License        string   `toml:"license" json:"license" yaml:"license"`
	Repo           string   `toml:"repo" json:"repo,omitempty" yaml:"repo,omitempty"`
	SupervisedKeys []string `toml:"supervised_keys" json:"supervisedKeys" yaml:"supervisedKeys"`
}

// LoadInfo returns the built-in dataset info. When path is not empty the keys
// present in that TOML file replace the built-in values.
func LoadInfo(path string) (Info, error) {
	var info Info
	if err := toml.Unmarshal([]byte(defaultInfo), &info); err != nil {
		return Info{}, fmt.Errorf("parse built-in dataset info: %w", err)
	}
	if path == "" {
		return info, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open dataset info: %w", err)
	}
	defer file.Close()

	if err := toml.NewDecoder(file).Decode(&info); err != nil {
		return Info{}, fmt.Errorf("parse dataset info %s: %w", path, err)
	}
	return info, nil
}
