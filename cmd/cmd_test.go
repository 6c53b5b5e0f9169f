package cmd

import (
	"strings"
	"testing"

	"forest-tools/metatools"
)

func TestExportFormat(t *testing.T) {
	tests := []struct {
		flag, path, want string
	}{
		{"", "out.parquet", "parquet"},
		{"", "out.CSV", "csv"},
		{"", "out.sqlite", "sqlite"},
		{"", "out.db", "sqlite"},
		{"", "out", "parquet"},
		{"CSV", "out.parquet", "csv"},
	}
	for _, tt := range tests {
		if got := exportFormat(tt.flag, tt.path); got != tt.want {
			t.Errorf("exportFormat(%q, %q) = %q, want %q", tt.flag, tt.path, got, tt.want)
		}
	}
}

func TestLogProgress(t *testing.T) {
	p := &logProgress{desc: "test", total: 3}
	for i := 0; i < 3; i++ {
		if err := p.Add(1); err != nil {
			t.Fatal(err)
		}
	}
	if p.done != 3 {
		t.Errorf("got %d done, want 3", p.done)
	}
	empty := &logProgress{desc: "empty"}
	if err := empty.Add(1); err != nil {
		t.Fatal(err)
	}
}

func TestRenderSummary(t *testing.T) {
	s := metatools.Summarize([]metatools.GroupRecord{
		{GroupID: "a", DimensionsMatch: true, Images: []metatools.ImageRecord{
			{Season: metatools.Winter, TileID: "T32ULB"},
		}},
	})
	out := renderSummary(s)
	for _, want := range []string{"Manifest summary", "Winter images", "Tile T32ULB", "Groups"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderGroups(t *testing.T) {
	out := renderGroups([]metatools.GroupRecord{
		{GroupID: "0000005", BoundingBox: [4]float64{8.9, 45, 9.1, 45.2}, MaskWidth: 264, MaskHeight: 264, DimensionsMatch: true},
	})
	for _, want := range []string{"Groups", "0000005", "8.9000 45.0000 9.1000 45.2000", "264x264", "true"} {
		if !strings.Contains(out, want) {
			t.Errorf("groups table missing %q:\n%s", want, out)
		}
	}
}
