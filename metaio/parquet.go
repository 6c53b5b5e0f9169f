package metaio

import (
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"
)

const rowGroupSize = 10000

// WriteParquet writes rows to a snappy-compressed parquet file, flushing a row group
// every rowGroupSize rows.
func WriteParquet(rows []ImageRow, path string) (err error) {
	output, err := os.Create(path)
	if err != nil {
		return err
	}

	schema := parquet.SchemaOf(new(ImageRow))
	writer := parquet.NewGenericWriter[ImageRow](output, schema, parquet.Compression(&parquet.Snappy))
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if cerr := output.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for start := 0; start < len(rows); start += rowGroupSize {
		end := start + rowGroupSize
		if end > len(rows) {
			end = len(rows)
		}
		logrus.Infof("Writing rows %d-%d", start, end)
		if _, err := writer.Write(rows[start:end]); err != nil {
			return err
		}
		if err := writer.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// ReadParquet loads every row of a file written by WriteParquet.
func ReadParquet(path string) ([]ImageRow, error) {
	return parquet.ReadFile[ImageRow](path)
}
