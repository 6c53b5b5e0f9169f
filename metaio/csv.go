package metaio

import (
	"encoding/csv"
	"os"
	"strconv"

	"forest-tools/metatools"

	"github.com/sirupsen/logrus"
)

var csvHeader = []string{
	"group_id", "mask_path", "geom", "mask_width", "mask_height", "dimensions_match",
	"s2_cell", "s2_cell_wkt", "area_m2", "path", "timestamp_start", "timestamp_end", "tile_id",
	"season", "width", "height",
}

func (r ImageRow) fields() []string {
	bbox := [4]float64{r.MinLon, r.MinLat, r.MaxLon, r.MaxLat}
	return []string{
		r.GroupID,
		r.MaskPath,
		metatools.BoundingBoxWKT(bbox),
		strconv.Itoa(int(r.MaskWidth)),
		strconv.Itoa(int(r.MaskHeight)),
		strconv.FormatBool(r.DimensionsMatch),
		r.S2Cell,
		r.S2CellWKT,
		strconv.FormatFloat(r.AreaM2, 'f', 1, 64),
		r.Path,
		r.TimestampStart,
		r.TimestampEnd,
		r.TileID,
		r.Season,
		strconv.Itoa(int(r.Width)),
		strconv.Itoa(int(r.Height)),
	}
}

// WriteCSV writes rows as semicolon separated values; the geometry column is WKT.
func WriteCSV(rows []ImageRow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for i, row := range rows {
		if i%10000 == 0 {
			logrus.Infof("Writing row %d", i)
		}
		if err := w.Write(row.fields()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}
