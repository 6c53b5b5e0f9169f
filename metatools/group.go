package metatools

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const (
	DefaultImagesDir = "images"
	DefaultMasksDir  = "masks"
	DefaultImageFile = "all_bands.tif"
	DefaultMaskFile  = "mask.tif"
)

// Layout describes where groups live under a dataset root:
//
//	<Root>/<ImagesDir>/<group_id>/<start>_<end>_<tile>/<ImageFile>
//	<Root>/<MasksDir>/<group_id>/<MaskFile>
type Layout struct {
	Root      string
	ImagesDir string
	MasksDir  string
	ImageFile string
	MaskFile  string
}

// DefaultLayout returns the standard layout rooted at root.
func DefaultLayout(root string) Layout {
	return Layout{Root: root}.withDefaults()
}

func (l Layout) withDefaults() Layout {
	if l.ImagesDir == "" {
		l.ImagesDir = DefaultImagesDir
	}
	if l.MasksDir == "" {
		l.MasksDir = DefaultMasksDir
	}
	if l.ImageFile == "" {
		l.ImageFile = DefaultImageFile
	}
	if l.MaskFile == "" {
		l.MaskFile = DefaultMaskFile
	}
	return l
}

func (l Layout) ImagesRoot() string { return filepath.Join(l.Root, l.ImagesDir) }

func (l Layout) MasksRoot() string { return filepath.Join(l.Root, l.MasksDir) }

func (l Layout) MaskPath(groupID string) string {
	return filepath.Join(l.MasksRoot(), groupID, l.MaskFile)
}

// rel returns path relative to the root with forward slashes, the form stored in
// the manifest.
func (l Layout) rel(path string) string {
	r, err := filepath.Rel(l.Root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

type GroupRecord struct {
	GroupID         string        `json:"group_id"`
	MaskPath        string        `json:"mask_path"`
	BoundingBox     [4]float64    `json:"bounding_box"`
	MaskWidth       int           `json:"mask_width"`
	MaskHeight      int           `json:"mask_height"`
	DimensionsMatch bool          `json:"dimensions_match"`
	Images          []ImageRecord `json:"images"`
}

// UnmarshalJSON accepts the box under either bounding_box or bbox_epsg4326, the
// key of manifests published before bounding_box. bounding_box wins when both
// are present.
func (r *GroupRecord) UnmarshalJSON(data []byte) error {
	type plain GroupRecord
	aux := struct {
		*plain
		Legacy *[4]float64 `json:"bbox_epsg4326"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Legacy == nil {
		return nil
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if _, ok := keys["bounding_box"]; !ok {
		r.BoundingBox = *aux.Legacy
	}
	return nil
}

type ImageRecord struct {
	Path           string `json:"path"`
	TimestampStart string `json:"timestamp_start"`
	TimestampEnd   string `json:"timestamp_end"`
	TileID         string `json:"tile_id"`
	Season         Season `json:"season"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// Skip records why a group or a single image was left out of the manifest.
// Path is empty for whole-group exclusions.
type Skip struct {
	GroupID string `json:"group_id"`
	Path    string `json:"path,omitempty"`
	Reason  string `json:"reason"`
}

// GroupResult is the outcome of consolidating one group. Record is nil when the
// group is excluded; Skipped explains every exclusion, group-level or per image.
type GroupResult struct {
	GroupID string
	Record  *GroupRecord
	Skipped []Skip
}

func (r GroupResult) Excluded() bool { return r.Record == nil }

// Consolidate assembles the Group Record for groupID. It only reads from disk.
func Consolidate(groupID string, layout Layout) GroupResult {
	layout = layout.withDefaults()
	res := GroupResult{GroupID: groupID}

	maskPath := layout.MaskPath(groupID)
	if _, err := os.Stat(maskPath); err != nil {
		res.Skipped = append(res.Skipped, Skip{GroupID: groupID, Reason: "mask missing: " + err.Error()})
		return res
	}

	mask, err := Inspect(maskPath)
	if err != nil {
		res.Skipped = append(res.Skipped, Skip{GroupID: groupID, Reason: err.Error()})
		return res
	}

	imageDir := filepath.Join(layout.ImagesRoot(), groupID)
	entries, err := os.ReadDir(imageDir)
	if err != nil {
		res.Skipped = append(res.Skipped, Skip{GroupID: groupID, Reason: "read image directory: " + err.Error()})
		return res
	}

	record := &GroupRecord{
		GroupID:         groupID,
		MaskPath:        layout.rel(maskPath),
		BoundingBox:     mask.BoundingBox,
		MaskWidth:       mask.Width,
		MaskHeight:      mask.Height,
		DimensionsMatch: true,
		Images:          make([]ImageRecord, 0, len(entries)),
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		subdir := filepath.Join(imageDir, entry.Name())
		image, err := consolidateImage(subdir, layout)
		if err != nil {
			skip := Skip{GroupID: groupID, Path: layout.rel(subdir), Reason: err.Error()}
			logrus.WithFields(logrus.Fields{
				"group_id": groupID,
				"path":     skip.Path,
			}).Debugf("skipping image: %s", skip.Reason)
			res.Skipped = append(res.Skipped, skip)
			continue
		}
		if image.Width != record.MaskWidth || image.Height != record.MaskHeight {
			record.DimensionsMatch = false
		}
		record.Images = append(record.Images, image)
	}

	res.Record = record
	return res
}

var errRasterMissing = errors.New("raster missing")

func consolidateImage(subdir string, layout Layout) (ImageRecord, error) {
	rasterPath := filepath.Join(subdir, layout.ImageFile)
	fi, err := os.Stat(rasterPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImageRecord{}, errRasterMissing
		}
		return ImageRecord{}, err
	}
	if fi.IsDir() {
		return ImageRecord{}, errRasterMissing
	}

	acq, err := ParseAcquisitionDir(filepath.Base(subdir))
	if err != nil {
		return ImageRecord{}, err
	}

	width, height, err := ReadDimensions(rasterPath)
	if err != nil {
		return ImageRecord{}, err
	}

	return ImageRecord{
		Path:           layout.rel(rasterPath),
		TimestampStart: acq.TimestampStart,
		TimestampEnd:   acq.TimestampEnd,
		TileID:         acq.TileID,
		Season:         acq.Season,
		Width:          width,
		Height:         height,
	}, nil
}
