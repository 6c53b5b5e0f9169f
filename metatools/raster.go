package metatools

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
)

// CanonicalEPSG is the geographic frame every bounding box is normalized into.
const CanonicalEPSG = 4326

var registerOnce sync.Once

// RegisterDrivers registers the GDAL drivers once per process.
func RegisterDrivers() {
	registerOnce.Do(godal.RegisterAll)
}

type Point struct {
	Lat float64
	Lng float64
}

// RasterInfo holds the header attributes of one raster file.
type RasterInfo struct {
	Path        string
	Width       int
	Height      int
	Bands       int
	BoundingBox [4]float64 // [min_lon, min_lat, max_lon, max_lat] in EPSG:4326
	CRS         string     // source projection as WKT
	Origin      Point      // native coordinates of the top-left corner
	XRes        float64
	YRes        float64
}

// Inspect opens path once and reads its dimensions, native origin and resolution,
// and its bounding box in EPSG:4326.
func Inspect(path string) (info RasterInfo, err error) {
	ds, err := openRaster(path)
	if err != nil {
		return RasterInfo{}, err
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	st := ds.Structure()
	info = RasterInfo{Path: path, Width: st.SizeX, Height: st.SizeY, Bands: st.NBands}

	info.BoundingBox, info.CRS, err = readBounds(path, ds)
	if err != nil {
		return RasterInfo{}, err
	}
	info.Origin, info.XRes, info.YRes, err = getOriginAndResolution(ds)
	if err != nil {
		return RasterInfo{}, &RasterOpenError{Path: path, Err: err}
	}
	return info, nil
}

// ReadBoundsAndCRS returns the raster's bounds in EPSG:4326 together with the WKT of
// its native reference system.
func ReadBoundsAndCRS(path string) (bbox [4]float64, crs string, err error) {
	ds, err := openRaster(path)
	if err != nil {
		return bbox, "", err
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()
	return readBounds(path, ds)
}

// ReadDimensions returns the pixel width and height of the raster.
func ReadDimensions(path string) (width, height int, err error) {
	ds, err := openRaster(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()
	st := ds.Structure()
	return st.SizeX, st.SizeY, nil
}

func openRaster(path string) (*godal.Dataset, error) {
	RegisterDrivers()
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &RasterOpenError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, &RasterOpenError{Path: path, Err: fmt.Errorf("is a directory")}
	}
	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		logrus.Debugf("godal open %s: %v", path, err)
		return nil, &RasterOpenError{Path: path, Err: err}
	}
	return ds, nil
}

func readBounds(path string, ds *godal.Dataset) ([4]float64, string, error) {
	var bbox [4]float64
	wkt := ds.Projection()
	if wkt == "" {
		return bbox, "", &CRSError{Path: path}
	}

	wgs84, err := godal.NewSpatialRefFromEPSG(CanonicalEPSG)
	if err != nil {
		return bbox, "", &CRSError{Path: path, Err: err}
	}
	defer wgs84.Close()

	src := ds.SpatialRef()
	defer src.Close()

	if src.IsSame(wgs84) {
		bbox, err = ds.Bounds()
		if err != nil {
			return bbox, "", &RasterOpenError{Path: path, Err: err}
		}
		return bbox, wkt, nil
	}

	bbox, err = ds.Bounds(wgs84)
	if err != nil {
		return bbox, "", &CRSError{Path: path, Err: err}
	}
	return bbox, wkt, nil
}

func getOriginAndResolution(ds *godal.Dataset) (Point, float64, float64, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return Point{}, 0, 0, err
	}
	origin := Point{gt[3], gt[0]}
	xRes := gt[1]
	yRes := gt[5]
	return origin, xRes, yRes, nil
}
