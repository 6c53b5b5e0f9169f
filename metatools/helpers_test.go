package metatools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
)

// writeRaster creates a single-band UInt16 GeoTIFF. epsg 32632 places it near
// 9°E 45°N at 10m resolution, epsg 4326 at 6°E 50°N, and epsg 0 leaves the
// projection unset.
func writeRaster(t testing.TB, path string, width, height, epsg int) {
	t.Helper()
	RegisterDrivers()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	ds, err := godal.Create(godal.GTiff, path, 1, godal.UInt16, width, height)
	if err != nil {
		t.Fatal(err)
	}

	gt := [6]float64{500000, 10, 0, 5000000, 0, -10}
	if epsg == 4326 {
		gt = [6]float64{6.0, 0.001, 0, 50.1, 0, -0.001}
	}
	if err := ds.SetGeoTransform(gt); err != nil {
		t.Fatal(err)
	}
	if epsg != 0 {
		sr, err := godal.NewSpatialRefFromEPSG(epsg)
		if err != nil {
			t.Fatal(err)
		}
		if err := ds.SetSpatialRef(sr); err != nil {
			t.Fatal(err)
		}
		sr.Close()
	}
	if err := ds.Close(); err != nil {
		t.Fatal(err)
	}
}

type testImage struct {
	dir           string
	width, height int
}

// makeGroup lays out one group under root. A zero mask size skips the mask.
func makeGroup(t testing.TB, root, groupID string, maskW, maskH int, images ...testImage) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, DefaultImagesDir, groupID), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, DefaultMasksDir), 0o755); err != nil {
		t.Fatal(err)
	}
	if maskW > 0 {
		writeRaster(t, filepath.Join(root, DefaultMasksDir, groupID, DefaultMaskFile), maskW, maskH, 32632)
	}
	for _, img := range images {
		writeRaster(t, filepath.Join(root, DefaultImagesDir, groupID, img.dir, DefaultImageFile), img.width, img.height, 32632)
	}
}
