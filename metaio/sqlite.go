package metaio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"forest-tools/metatools"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE groups (
		group_id TEXT PRIMARY KEY,
		mask_path TEXT NOT NULL,
		min_lon REAL NOT NULL,
		min_lat REAL NOT NULL,
		max_lon REAL NOT NULL,
		max_lat REAL NOT NULL,
		mask_width INTEGER NOT NULL,
		mask_height INTEGER NOT NULL,
		dimensions_match INTEGER NOT NULL,
		s2_cell TEXT NOT NULL,
		s2_cell_wkt TEXT NOT NULL,
		geom_wkt TEXT NOT NULL
	)`,
	`CREATE TABLE images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		group_id TEXT NOT NULL REFERENCES groups(group_id),
		position INTEGER NOT NULL,
		path TEXT NOT NULL,
		timestamp_start TEXT NOT NULL,
		timestamp_end TEXT NOT NULL,
		tile_id TEXT NOT NULL,
		season TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL
	)`,
	`CREATE INDEX idx_images_group ON images(group_id)`,
	`CREATE INDEX idx_images_season ON images(season)`,
}

// WriteSQLite writes records into a fresh database with a groups and an images
// table. The database is built next to path and renamed into place when complete.
func WriteSQLite(ctx context.Context, records []metatools.GroupRecord, path string, s2Lvl int) (err error) {
	tmpPath := path + ".tmp"
	_ = os.Remove(tmpPath)

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	defer func() {
		if err != nil {
			_ = db.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("apply pragma: %w", err)
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if err := insertRecords(ctx, db, records, s2Lvl); err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close sqlite db: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename sqlite db: %w", err)
	}
	return nil
}

func insertRecords(ctx context.Context, db *sql.DB, records []metatools.GroupRecord, s2Lvl int) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	groupStmt, err := tx.PrepareContext(ctx, `INSERT INTO groups (
		group_id, mask_path, min_lon, min_lat, max_lon, max_lat,
		mask_width, mask_height, dimensions_match, s2_cell, s2_cell_wkt, geom_wkt
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare groups insert: %w", err)
	}
	defer groupStmt.Close()

	imageStmt, err := tx.PrepareContext(ctx, `INSERT INTO images (
		group_id, position, path, timestamp_start, timestamp_end, tile_id, season, width, height
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare images insert: %w", err)
	}
	defer imageStmt.Close()

	for _, rec := range records {
		bbox := rec.BoundingBox
		cell := metatools.CenterCell(bbox, s2Lvl)
		if _, err := groupStmt.ExecContext(ctx,
			rec.GroupID, rec.MaskPath, bbox[0], bbox[1], bbox[2], bbox[3],
			rec.MaskWidth, rec.MaskHeight, rec.DimensionsMatch,
			cell.ToToken(), metatools.CellWKT(cell), metatools.BoundingBoxWKT(bbox),
		); err != nil {
			return fmt.Errorf("insert group %s: %w", rec.GroupID, err)
		}
		for i, img := range rec.Images {
			if _, err := imageStmt.ExecContext(ctx,
				rec.GroupID, i, img.Path, img.TimestampStart, img.TimestampEnd,
				img.TileID, string(img.Season), img.Width, img.Height,
			); err != nil {
				return fmt.Errorf("insert image %s: %w", img.Path, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
