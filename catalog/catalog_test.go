package catalog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v2"
)

func TestToCroissant(t *testing.T) {
	tests := []struct {
		name    string
		feature Feature
		want    Field
	}{
		{
			name:    "scalar",
			feature: value("group_id", "string"),
			want:    Field{Name: "group_id", DataType: "string", Description: "group_id field"},
		},
		{
			name:    "flat sequence",
			feature: sequence("bounding_box", value("", "float32")),
			want:    Field{Name: "bounding_box", IsArray: true, DataType: "float32", Description: "bounding_box sequence"},
		},
		{
			name: "nested sequence",
			feature: sequence("images", Feature{Kind: Record, Fields: []Feature{
				value("path", "string"),
				value("width", "int32"),
			}}),
			want: Field{Name: "images", IsArray: true, Description: "images sequence", Features: []Field{
				{Name: "path", DataType: "string", Description: "path field"},
				{Name: "width", DataType: "int32", Description: "width field"},
			}},
		},
		{
			name: "record",
			feature: Feature{Name: "meta", Kind: Record, Fields: []Feature{
				value("a", "string"),
			}},
			want: Field{Name: "meta", Description: "meta nested structure", Features: []Field{
				{Name: "a", DataType: "string", Description: "a field"},
			}},
		},
		{
			name:    "array of unknown",
			feature: sequence("odd_list", Feature{Kind: Kind(42)}),
			want:    Field{Name: "odd_list", IsArray: true, DataType: "unknown", Description: "odd_list sequence"},
		},
		{
			name:    "unknown kind",
			feature: Feature{Name: "odd", Kind: Kind(42)},
			want:    Field{Name: "odd", DataType: "unknown", Description: "odd field"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCroissant([]Feature{tt.feature})
			if !reflect.DeepEqual(got, []Field{tt.want}) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestManifestFeaturesCroissant(t *testing.T) {
	fields := ToCroissant(ManifestFeatures())
	var names []string
	for _, f := range fields {
		names = append(names, f.Name)
	}
	want := []string{"group_id", "mask_path", "bounding_box", "mask_width", "mask_height", "dimensions_match", "images"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	images := fields[6]
	if !images.IsArray || len(images.Features) != 7 || images.DataType != "" {
		t.Errorf("unexpected images field: %+v", images)
	}
}

func TestCroissantRecordJSON(t *testing.T) {
	out, err := json.Marshal(ToCroissant([]Feature{
		{Name: "meta", Kind: Record, Fields: []Feature{value("a", "string")}},
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"name":"meta","isArray":false,"features":[{"name":"a","isArray":false,"dataType":"string","description":"a field"}],"description":"meta nested structure"}]`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestCroissantJSONKeys(t *testing.T) {
	out, err := json.Marshal(ToCroissant([]Feature{value("season", "string")}))
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"name":"season","isArray":false,"dataType":"string","description":"season field"}]`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestLoadInfo(t *testing.T) {
	info, err := LoadInfo("")
	if err != nil {
		t.Fatal(err)
	}
	if info.License != "CC-BY-4.0" || info.Homepage != "https://www.evo-land.eu" {
		t.Errorf("unexpected built-in info: %+v", info)
	}
	if !reflect.DeepEqual(info.SupervisedKeys, []string{"images", "mask_path"}) {
		t.Errorf("unexpected supervised keys: %v", info.SupervisedKeys)
	}
	if !strings.HasPrefix(info.Citation, "@misc{ssl4eo_eu_forest,") {
		t.Errorf("unexpected citation: %q", info.Citation)
	}
}

func TestLoadInfoOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.toml")
	if err := os.WriteFile(path, []byte("license = \"CC0-1.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := LoadInfo(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.License != "CC0-1.0" {
		t.Errorf("license not overridden: %q", info.License)
	}
	if info.Description != "SSL4EO-EU Forest dataset metadata" {
		t.Errorf("description should keep built-in value, got %q", info.Description)
	}

	if _, err := LoadInfo(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing info file")
	}
}

func TestEncode(t *testing.T) {
	info, err := LoadInfo("")
	if err != nil {
		t.Fatal(err)
	}
	doc := NewDocument(info)

	var jsonOut bytes.Buffer
	if err := Encode(&jsonOut, doc, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(jsonOut.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["license"] != "CC-BY-4.0" {
		t.Errorf("json license got %v", decoded["license"])
	}
	if fields, ok := decoded["fields"].([]any); !ok || len(fields) != 7 {
		t.Errorf("json fields got %v", decoded["fields"])
	}

	var yamlOut bytes.Buffer
	if err := Encode(&yamlOut, doc, FormatYAML); err != nil {
		t.Fatal(err)
	}
	var fromYAML struct {
		License string  `yaml:"license"`
		Fields  []Field `yaml:"fields"`
	}
	if err := yaml.Unmarshal(yamlOut.Bytes(), &fromYAML); err != nil {
		t.Fatal(err)
	}
	if fromYAML.License != "CC-BY-4.0" || !reflect.DeepEqual(fromYAML.Fields, doc.Fields) {
		t.Errorf("yaml round trip mismatch: %+v", fromYAML)
	}

	if err := Encode(&bytes.Buffer{}, doc, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
