package metatools

import (
	"fmt"
	"math"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/golang/geo/s2"
)

// BoundingRect converts a [min_lon, min_lat, max_lon, max_lat] box into an s2.Rect.
func BoundingRect(bbox [4]float64) s2.Rect {
	rect := s2.RectFromLatLng(s2.LatLngFromDegrees(bbox[1], bbox[0]))
	return rect.AddPoint(s2.LatLngFromDegrees(bbox[3], bbox[2]))
}

// CenterCell returns the S2 cell at level containing the centre of bbox.
func CenterCell(bbox [4]float64, level int) s2.CellID {
	center := BoundingRect(bbox).Center()
	return s2.CellIDFromLatLng(center).Parent(level)
}

// BoundingBoxWKT renders bbox as a closed WKT polygon in lon/lat order.
func BoundingBoxWKT(bbox [4]float64) string {
	return fmt.Sprintf("POLYGON((%v %v, %v %v, %v %v, %v %v, %v %v))",
		bbox[0], bbox[1],
		bbox[2], bbox[1],
		bbox[2], bbox[3],
		bbox[0], bbox[3],
		bbox[0], bbox[1])
}

// CellWKT renders the outline of an S2 cell as a closed WKT polygon in lon/lat
// order, starting and ending at the cell's first vertex.
func CellWKT(id s2.CellID) string {
	cell := s2.CellFromCellID(id)
	var b strings.Builder
	b.WriteString("POLYGON((")
	for k := 0; k <= 4; k++ {
		if k > 0 {
			b.WriteString(", ")
		}
		ll := s2.LatLngFromPoint(cell.Vertex(k % 4))
		fmt.Fprintf(&b, "%v %v", ll.Lng.Degrees(), ll.Lat.Degrees())
	}
	b.WriteString("))")
	return b.String()
}

// AreaSquareMeters projects bbox into the UTM zone of its centre and returns the
// planar area.
func AreaSquareMeters(bbox [4]float64) (float64, error) {
	RegisterDrivers()
	geom, err := wgs84GeomFromString(BoundingBoxWKT(bbox))
	if err != nil {
		return 0, err
	}
	defer geom.Close()

	center := BoundingRect(bbox).Center()
	utmSRS, err := getUTMSpatialRef(center.Lng.Degrees(), center.Lat.Degrees())
	if err != nil {
		return 0, err
	}
	defer utmSRS.Close()

	if err := geom.Reproject(utmSRS); err != nil {
		return 0, err
	}
	return geom.Area(), nil
}

func wgs84GeomFromString(wkt string) (*godal.Geometry, error) {
	srs, err := godal.NewSpatialRefFromEPSG(CanonicalEPSG)
	if err != nil {
		return nil, err
	}
	// the geometry holds its own reference
	defer srs.Close()
	geom, err := godal.NewGeometryFromWKT(wkt, srs)
	if err != nil {
		return nil, err
	}
	return geom, nil
}

func getUTMSpatialRef(lng float64, lat float64) (*godal.SpatialRef, error) {
	utm := utmZone(lng)
	var utmSRS *godal.SpatialRef
	var err error
	if lat >= 0 {
		utmSRS, err = godal.NewSpatialRefFromEPSG(32600 + utm)
	} else {
		utmSRS, err = godal.NewSpatialRefFromEPSG(32700 + utm)
	}
	return utmSRS, err
}

// utmZone is the UTM zone of lng, 1 through 60. The antimeridian belongs to zone 60.
func utmZone(lng float64) int {
	utm := int(math.Ceil((lng + 180) / 6))
	return min(max(utm, 1), 60)
}
