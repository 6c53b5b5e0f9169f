package metatools

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestInspectReprojectsUTM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.tif")
	writeRaster(t, path, 264, 264, 32632)

	info, err := Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Width != 264 || info.Height != 264 || info.Bands != 1 {
		t.Errorf("got %dx%d with %d bands", info.Width, info.Height, info.Bands)
	}
	if info.CRS == "" {
		t.Error("expected source WKT")
	}
	bbox := info.BoundingBox
	if !(bbox[0] < bbox[2] && bbox[1] < bbox[3]) {
		t.Fatalf("bbox not ordered: %v", bbox)
	}
	// 500000E 5000000N in zone 32N sits on the 9°E meridian near 45.1°N.
	if bbox[0] < 8.9 || bbox[2] > 9.1 || bbox[1] < 45.0 || bbox[3] > 45.2 {
		t.Errorf("bbox %v not near 9°E 45.1°N", bbox)
	}
	if info.Origin.Lng != 500000 || info.Origin.Lat != 5000000 || info.XRes != 10 || info.YRes != -10 {
		t.Errorf("unexpected origin/resolution: %+v", info)
	}
}

func TestReadBoundsAndCRSGeographic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geo.tif")
	writeRaster(t, path, 100, 100, 4326)

	bbox, crs, err := ReadBoundsAndCRS(path)
	if err != nil {
		t.Fatal(err)
	}
	if crs == "" {
		t.Error("expected source WKT")
	}
	want := [4]float64{6.0, 50.0, 6.1, 50.1}
	for i := range want {
		if math.Abs(bbox[i]-want[i]) > 1e-9 {
			t.Errorf("got %v, want %v", bbox, want)
			break
		}
	}
}

func TestReadBoundsAndCRSWithoutCRS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nocrs.tif")
	writeRaster(t, path, 10, 10, 0)

	_, _, err := ReadBoundsAndCRS(path)
	var crsErr *CRSError
	if !errors.As(err, &crsErr) {
		t.Fatalf("got %v, want *CRSError", err)
	}
}

func TestReadDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.tif")
	writeRaster(t, path, 200, 150, 32632)

	w, h, err := ReadDimensions(path)
	if err != nil {
		t.Fatal(err)
	}
	if w != 200 || h != 150 {
		t.Errorf("got %dx%d, want 200x150", w, h)
	}
}

func TestReadDimensionsMissing(t *testing.T) {
	_, _, err := ReadDimensions(filepath.Join(t.TempDir(), "missing.tif"))
	var openErr *RasterOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %v, want *RasterOpenError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected wrapped fs.ErrNotExist, got %v", err)
	}
}

func TestReadDimensionsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.tif")
	if err := os.WriteFile(path, []byte("II*\x00 not really a tiff"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := ReadDimensions(path)
	var openErr *RasterOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("got %v, want *RasterOpenError", err)
	}
}
