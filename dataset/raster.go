package dataset

import (
	"errors"
	"fmt"
	"sync"

	"forest-tools/metatools"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
)

// Raster holds every band of a file in memory, row-major per band.
type Raster struct {
	Width        int
	Height       int
	Bands        [][]float64
	CRS          string
	GeoTransform [6]float64
}

// At returns the value of band b at column x, row y.
func (r *Raster) At(b, x, y int) float64 {
	return r.Bands[b][y*r.Width+x]
}

type bandReader struct {
	band   godal.Band
	width  int
	values []float64
	mu     *sync.Mutex
}

// ReadRaster loads path into memory, reading the blocks of each band on
// numWorkers goroutines.
func ReadRaster(path string, numWorkers int) (r *Raster, err error) {
	metatools.RegisterDrivers()
	if numWorkers < 1 {
		numWorkers = 1
	}

	ds, err := godal.Open(path, godal.RasterOnly())
	if err != nil {
		return nil, &metatools.RasterOpenError{Path: path, Err: err}
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	struc := ds.Structure()
	r = &Raster{
		Width:  struc.SizeX,
		Height: struc.SizeY,
		CRS:    ds.Projection(),
	}
	if gt, err := ds.GeoTransform(); err == nil {
		r.GeoTransform = gt
	}

	// a single dataset handle is not safe for concurrent reads
	var mu sync.Mutex
	for _, band := range ds.Bands() {
		br := &bandReader{
			band:   band,
			width:  struc.SizeX,
			values: make([]float64, struc.SizeX*struc.SizeY),
			mu:     &mu,
		}
		if err := br.readBlocks(numWorkers); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		r.Bands = append(r.Bands, br.values)
	}
	logrus.WithFields(logrus.Fields{
		"path":  path,
		"bands": len(r.Bands),
	}).Debugf("read %dx%d raster", r.Width, r.Height)
	return r, nil
}

func (br *bandReader) readBlocks(numWorkers int) error {
	done := make(chan struct{})
	defer close(done)

	blocks := genBlocks(br.band, done)
	errCh := make(chan error, numWorkers)
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for block := range blocks {
				if err := br.copyBlock(block); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	return <-errCh
}

func genBlocks(band godal.Band, done <-chan struct{}) <-chan godal.Block {
	blocks := make(chan godal.Block)
	firstBlock := band.Structure().FirstBlock()
	go func() {
		defer close(blocks)
		for block, ok := firstBlock, true; ok; block, ok = block.Next() {
			select {
			case blocks <- block:
			case <-done:
				return
			}
		}
	}()
	return blocks
}

func (br *bandReader) copyBlock(block godal.Block) error {
	buf := make([]float64, block.W*block.H)
	if err := br.lockedRead(block, buf); err != nil {
		return err
	}
	for row := 0; row < block.H; row++ {
		start := (block.Y0+row)*br.width + block.X0
		copy(br.values[start:start+block.W], buf[row*block.W:(row+1)*block.W])
	}
	return nil
}

func (br *bandReader) lockedRead(block godal.Block, buf []float64) error {
	br.mu.Lock()
	defer br.mu.Unlock()
	return br.band.Read(block.X0, block.Y0, buf, block.W, block.H)
}
