package api

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"forest-tools/catalog"
	"forest-tools/dataset"
	"forest-tools/metatools"

	"github.com/airbusgeo/godal"
)

func writeRaster(t *testing.T, path string, nBands, width, height int) {
	t.Helper()
	metatools.RegisterDrivers()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	ds, err := godal.Create(godal.GTiff, path, nBands, godal.UInt16, width, height)
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.SetGeoTransform([6]float64{6.0, 0.001, 0, 50.1, 0, -0.001}); err != nil {
		t.Fatal(err)
	}
	sr, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		t.Fatal(err)
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		t.Fatal(err)
	}
	for b, band := range ds.Bands() {
		buf := make([]uint16, width*height)
		for i := range buf {
			buf[i] = uint16(b*100 + i)
		}
		if err := band.Write(0, 0, buf, width, height); err != nil {
			t.Fatal(err)
		}
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	root := t.TempDir()
	writeRaster(t, filepath.Join(root, "masks", "0000005", "mask.tif"), 1, 32, 16)
	writeRaster(t, filepath.Join(root, "images", "0000005", "20210115T102311_20210115T102305_T32ULB", "all_bands.tif"), 4, 32, 16)

	summary, err := metatools.BuildManifest(root, metatools.ConfigOpts{NumWorkers: 1})
	if err != nil {
		t.Fatal(err)
	}
	ds, err := dataset.Open(summary.ManifestPath, dataset.Options{LocalRoot: root})
	if err != nil {
		t.Fatal(err)
	}
	info, err := catalog.LoadInfo("")
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewRouter(ds, catalog.NewDocument(info)))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGroups(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantCount int
	}{
		{"all", "", http.StatusOK, 1},
		{"bbox hit", "?bbox=6.01,50.0,6.02,50.1", http.StatusOK, 1},
		{"bbox miss", "?bbox=10,10,11,11", http.StatusOK, 0},
		{"season hit", "?season=winter", http.StatusOK, 1},
		{"season miss", "?season=summer", http.StatusOK, 0},
		{"bad bbox", "?bbox=1,2,3", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.URL+"/groups"+tt.query)
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("got status %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var list groupList
			if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
				t.Fatal(err)
			}
			if list.Count != tt.wantCount || len(list.Groups) != tt.wantCount {
				t.Errorf("got %d groups, want %d", list.Count, tt.wantCount)
			}
		})
	}
}

func TestGroupByID(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv.URL+"/groups/0000005")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	var rec metatools.GroupRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if rec.MaskPath != "masks/0000005/mask.tif" || len(rec.Images) != 1 || rec.Images[0].Season != metatools.Winter {
		t.Errorf("unexpected record %+v", rec)
	}

	if resp := get(t, srv.URL+"/groups/9999999"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("got status %d for unknown group", resp.StatusCode)
	}
}

func TestCroissant(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv.URL+"/croissant")
	var doc struct {
		License string          `json:"license"`
		Fields  []catalog.Field `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.License != "CC-BY-4.0" || len(doc.Fields) != 7 {
		t.Errorf("unexpected document %+v", doc)
	}

	if resp := get(t, srv.URL+"/croissant?format=yaml"); resp.Header.Get("Content-Type") != "application/yaml" {
		t.Errorf("got content type %q", resp.Header.Get("Content-Type"))
	}
	if resp := get(t, srv.URL+"/croissant?format=xml"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("got status %d for unknown format", resp.StatusCode)
	}
}

func TestPreviews(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name          string
		path          string
		wantCode      int
		width, height int
	}{
		{"image", "/groups/0000005/images/0/preview.png", http.StatusOK, 32, 16},
		{"image thumbnail", "/groups/0000005/images/0/preview.png?size=8", http.StatusOK, 8, 4},
		{"mask", "/groups/0000005/mask.png", http.StatusOK, 32, 16},
		{"image out of range", "/groups/0000005/images/3/preview.png", http.StatusNotFound, 0, 0},
		{"unknown group", "/groups/1/images/0/preview.png", http.StatusNotFound, 0, 0},
		{"bad size", "/groups/0000005/mask.png?size=0", http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, srv.URL+tt.path)
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("got status %d, want %d", resp.StatusCode, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			img, err := png.Decode(resp.Body)
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds().Dx() != tt.width || img.Bounds().Dy() != tt.height {
				t.Errorf("got bounds %v", img.Bounds())
			}
		})
	}
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t)
	var s metatools.Summary
	if err := json.NewDecoder(get(t, srv.URL+"/summary").Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.Groups != 1 || s.Images != 1 {
		t.Errorf("unexpected summary %+v", s)
	}
}
