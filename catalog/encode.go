package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v2"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Document is the full catalog: dataset info plus the Croissant field list.
type Document struct {
	Info   `yaml:",inline"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// NewDocument pairs info with the Croissant rendering of the manifest shape.
func NewDocument(info Info) Document {
	return Document{Info: info, Fields: ToCroissant(ManifestFeatures())}
}

// Encode writes doc to w as JSON or YAML.
func Encode(w io.Writer, doc Document, format string) error {
	switch format {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	}
	return fmt.Errorf("unknown catalog format %q", format)
}
