package metatools

import (
	"testing"
)

func TestAggregations(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	aggResults := []struct {
		name string
		got  float64
		want float64
	}{
		{"mean", Mean(values...), 2.5},
		{"sum", Sum(values...), 10},
		{"max", Max(values...), 4},
		{"min", Min(values...), 1},
		{"mean of nothing", Mean(), 0},
		{"min of nothing", Min(), 0},
	}
	for _, tt := range aggResults {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	records := []GroupRecord{
		{GroupID: "a", DimensionsMatch: true, Images: []ImageRecord{
			{Season: Winter, TileID: "T36SVF"},
			{Season: Spring, TileID: "T36SVF"},
			{Season: Summer, TileID: "T32UQD"},
		}},
		{GroupID: "b", DimensionsMatch: false, Images: []ImageRecord{
			{Season: Winter, TileID: "T32UQD"},
		}},
		{GroupID: "c", DimensionsMatch: true, Images: []ImageRecord{}},
	}
	s := Summarize(records)
	if s.Groups != 3 || s.Images != 4 || s.MismatchedGroups != 1 || s.EmptyGroups != 1 {
		t.Errorf("unexpected counts: %+v", s)
	}
	if s.ImagesPerSeason[Winter] != 2 || s.ImagesPerSeason[Fall] != 0 {
		t.Errorf("unexpected season counts: %v", s.ImagesPerSeason)
	}
	if s.Tiles["T32UQD"] != 2 {
		t.Errorf("unexpected tile counts: %v", s.Tiles)
	}
	if s.MaxImagesPerGroup != 3 || s.MinImagesPerGroup != 0 {
		t.Errorf("unexpected min/max: %v/%v", s.MinImagesPerGroup, s.MaxImagesPerGroup)
	}
}
