// Package dataset gives indexed access to the groups of a manifest and loads
// their rasters, either from a local copy of the dataset or through the fetch
// cache.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"forest-tools/fetch"
	"forest-tools/metatools"

	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultEndpoint = "https://huggingface.co"
	DefaultRepo     = "dm4eo/ssl4eo_eu_forest"
	DefaultRevision = "v1.0"
)

var (
	ErrUnknownGroup = errors.New("unknown group")
	ErrOutOfRange   = errors.New("index out of range")
)

// Options controls where sample files are read from.
type Options struct {
	// LocalRoot is a local copy of the dataset. When set nothing is fetched.
	LocalRoot  string
	Fetcher    *fetch.Fetcher
	Endpoint   string
	Repo       string
	Revision   string
	NumWorkers int
}

func (o Options) withDefaults() Options {
	if o.Endpoint == "" {
		o.Endpoint = DefaultEndpoint
	}
	if o.Repo == "" {
		o.Repo = DefaultRepo
	}
	if o.Revision == "" {
		o.Revision = DefaultRevision
	}
	if o.NumWorkers < 1 {
		o.NumWorkers = runtime.NumCPU()
	}
	return o
}

// ImageMeta describes one image of a Sample.
type ImageMeta struct {
	Season         metatools.Season `json:"season"`
	TimestampStart string           `json:"timestamp_start"`
	TimestampEnd   string           `json:"timestamp_end"`
	TileID         string           `json:"tile_id"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Bands          int              `json:"bands"`
	CRS            string           `json:"crs"`
	GeoTransform   [6]float64       `json:"transform"`
}

// Sample is a group with its mask and images loaded. Images and Metadata are
// in manifest order.
type Sample struct {
	GroupID  string
	Mask     *Raster
	Images   []*Raster
	Metadata []ImageMeta
}

// Dataset is a read-only view over manifest records.
type Dataset struct {
	records []metatools.GroupRecord
	byID    map[string]int
	rects   []s2.Rect
	opts    Options
}

// New indexes records.
func New(records []metatools.GroupRecord, opts Options) *Dataset {
	d := &Dataset{
		records: records,
		byID:    make(map[string]int, len(records)),
		rects:   make([]s2.Rect, len(records)),
		opts:    opts.withDefaults(),
	}
	for i, rec := range records {
		d.byID[rec.GroupID] = i
		d.rects[i] = metatools.BoundingRect(rec.BoundingBox)
	}
	return d
}

// Open loads a manifest file.
func Open(manifestPath string, opts Options) (*Dataset, error) {
	records, err := metatools.ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Dataset initialized with %d samples", len(records))
	return New(records, opts), nil
}

// OpenRemote fetches the manifest of the configured repository and opens it.
func OpenRemote(ctx context.Context, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("dataset: remote access needs a fetcher")
	}
	logrus.Infof("Loading dataset from %s@%s", opts.Repo, opts.Revision)
	d := &Dataset{opts: opts}
	path, err := opts.Fetcher.Fetch(ctx, d.URL(metatools.DefaultManifestName), metatools.DefaultManifestName)
	if err != nil {
		return nil, err
	}
	return Open(path, opts)
}

func (d *Dataset) Len() int { return len(d.records) }

func (d *Dataset) Records() []metatools.GroupRecord { return d.records }

// Record returns the record at index i.
func (d *Dataset) Record(i int) (metatools.GroupRecord, error) {
	if i < 0 || i >= len(d.records) {
		return metatools.GroupRecord{}, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, i, len(d.records))
	}
	return d.records[i], nil
}

// ByID returns the record of a group and its index.
func (d *Dataset) ByID(groupID string) (metatools.GroupRecord, int, bool) {
	i, ok := d.byID[groupID]
	if !ok {
		return metatools.GroupRecord{}, -1, false
	}
	return d.records[i], i, true
}

// Intersecting returns the indices of groups whose bounding box intersects bbox.
func (d *Dataset) Intersecting(bbox [4]float64) []int {
	query := metatools.BoundingRect(bbox)
	var hits []int
	for i, rect := range d.rects {
		if rect.Intersects(query) {
			hits = append(hits, i)
		}
	}
	return hits
}

// URL is the download location of a path relative to the dataset root.
func (d *Dataset) URL(rel string) string {
	return fmt.Sprintf("%s/datasets/%s/resolve/%s/%s",
		strings.TrimRight(d.opts.Endpoint, "/"), d.opts.Repo, d.opts.Revision, strings.TrimLeft(rel, "/"))
}

// Resolve returns a local file for rel, fetching it when the dataset is remote.
func (d *Dataset) Resolve(ctx context.Context, rel string) (string, error) {
	if d.opts.LocalRoot != "" {
		return filepath.Join(d.opts.LocalRoot, filepath.FromSlash(rel)), nil
	}
	if d.opts.Fetcher == nil {
		return "", fmt.Errorf("dataset: no local root and no fetcher for %s", rel)
	}
	return d.opts.Fetcher.Fetch(ctx, d.URL(rel), rel)
}

// Get loads the mask and every image of the group at index i.
func (d *Dataset) Get(ctx context.Context, i int) (*Sample, error) {
	rec, err := d.Record(i)
	if err != nil {
		return nil, err
	}
	log := logrus.WithField("group_id", rec.GroupID)

	sample := &Sample{
		GroupID:  rec.GroupID,
		Images:   make([]*Raster, len(rec.Images)),
		Metadata: make([]ImageMeta, len(rec.Images)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.NumWorkers)
	g.Go(func() error {
		mask, err := d.load(ctx, rec.MaskPath)
		if err != nil {
			return err
		}
		log.Debugf("Loaded mask %dx%d", mask.Width, mask.Height)
		sample.Mask = mask
		return nil
	})
	for j, img := range rec.Images {
		g.Go(func() error {
			raster, err := d.load(ctx, img.Path)
			if err != nil {
				return err
			}
			log.Debugf("Loaded %s image %dx%dx%d", img.Season, len(raster.Bands), raster.Height, raster.Width)
			sample.Images[j] = raster
			sample.Metadata[j] = ImageMeta{
				Season:         img.Season,
				TimestampStart: img.TimestampStart,
				TimestampEnd:   img.TimestampEnd,
				TileID:         img.TileID,
				Width:          raster.Width,
				Height:         raster.Height,
				Bands:          len(raster.Bands),
				CRS:            raster.CRS,
				GeoTransform:   raster.GeoTransform,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("group %s: %w", rec.GroupID, err)
	}
	return sample, nil
}

// GetByID is Get addressed by group id.
func (d *Dataset) GetByID(ctx context.Context, groupID string) (*Sample, error) {
	_, i, ok := d.ByID(groupID)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGroup, groupID)
	}
	return d.Get(ctx, i)
}

func (d *Dataset) load(ctx context.Context, rel string) (*Raster, error) {
	path, err := d.Resolve(ctx, rel)
	if err != nil {
		return nil, err
	}
	return ReadRaster(path, d.opts.NumWorkers)
}

// LoadImage loads image j of the group at index i.
func (d *Dataset) LoadImage(ctx context.Context, i, j int) (*Raster, error) {
	rec, err := d.Record(i)
	if err != nil {
		return nil, err
	}
	if j < 0 || j >= len(rec.Images) {
		return nil, fmt.Errorf("%w: image %d of group %s", ErrOutOfRange, j, rec.GroupID)
	}
	return d.load(ctx, rec.Images[j].Path)
}

// LoadMask loads the mask of the group at index i.
func (d *Dataset) LoadMask(ctx context.Context, i int) (*Raster, error) {
	rec, err := d.Record(i)
	if err != nil {
		return nil, err
	}
	return d.load(ctx, rec.MaskPath)
}
