package metaio

import (
	"forest-tools/metatools"

	"github.com/sirupsen/logrus"
)

// ImageRow is one image of one group with the group columns repeated. Groups
// without images produce a single row with empty image columns.
type ImageRow struct {
	GroupID         string  `parquet:"group_id"`
	MaskPath        string  `parquet:"mask_path"`
	MinLon          float64 `parquet:"min_lon"`
	MinLat          float64 `parquet:"min_lat"`
	MaxLon          float64 `parquet:"max_lon"`
	MaxLat          float64 `parquet:"max_lat"`
	MaskWidth       int32   `parquet:"mask_width"`
	MaskHeight      int32   `parquet:"mask_height"`
	DimensionsMatch bool    `parquet:"dimensions_match"`
	S2Cell          string  `parquet:"s2_cell"`
	S2CellWKT       string  `parquet:"s2_cell_wkt"`
	AreaM2          float64 `parquet:"area_m2"`
	Path            string  `parquet:"path"`
	TimestampStart  string  `parquet:"timestamp_start"`
	TimestampEnd    string  `parquet:"timestamp_end"`
	TileID          string  `parquet:"tile_id"`
	Season          string  `parquet:"season"`
	Width           int32   `parquet:"width"`
	Height          int32   `parquet:"height"`
}

// Flatten turns records into image rows. s2Lvl is the level of the cell token
// written for each group's bounding box centre.
func Flatten(records []metatools.GroupRecord, s2Lvl int) []ImageRow {
	var rows []ImageRow
	for _, rec := range records {
		area, err := metatools.AreaSquareMeters(rec.BoundingBox)
		if err != nil {
			logrus.Warnf("area of group %s: %v", rec.GroupID, err)
		}
		cell := metatools.CenterCell(rec.BoundingBox, s2Lvl)
		base := ImageRow{
			GroupID:         rec.GroupID,
			MaskPath:        rec.MaskPath,
			MinLon:          rec.BoundingBox[0],
			MinLat:          rec.BoundingBox[1],
			MaxLon:          rec.BoundingBox[2],
			MaxLat:          rec.BoundingBox[3],
			MaskWidth:       int32(rec.MaskWidth),
			MaskHeight:      int32(rec.MaskHeight),
			DimensionsMatch: rec.DimensionsMatch,
			S2Cell:          cell.ToToken(),
			S2CellWKT:       metatools.CellWKT(cell),
			AreaM2:          area,
		}
		if len(rec.Images) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, img := range rec.Images {
			row := base
			row.Path = img.Path
			row.TimestampStart = img.TimestampStart
			row.TimestampEnd = img.TimestampEnd
			row.TileID = img.TileID
			row.Season = string(img.Season)
			row.Width = int32(img.Width)
			row.Height = int32(img.Height)
			rows = append(rows, row)
		}
	}
	return rows
}
