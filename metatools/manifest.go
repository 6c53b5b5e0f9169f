package metatools

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultManifestName = "meta.jsonl"

// Progress receives one Add(1) per finished group. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(num int) error
}

type ConfigOpts struct {
	NumWorkers   int
	Layout       Layout // Root is taken from the BuildManifest argument
	ManifestName string
	SkipLog      string // optional JSONL file listing every skipped group and image
	NewProgress  func(total int) Progress
}

// BuildSummary reports what a manifest build kept and dropped.
type BuildSummary struct {
	RunID          string
	ManifestPath   string
	Groups         int
	Records        int
	ExcludedGroups int
	SkippedImages  int
	Skipped        []Skip
}

type noopProgress struct{}

func (noopProgress) Add(int) error { return nil }

// BuildManifest consolidates every group under root and writes the manifest. Per
// group and per image failures only reduce the output; the returned error is either
// a *DirectoryNotFoundError or a *WriteError.
func BuildManifest(root string, opts ConfigOpts) (*BuildSummary, error) {
	runID := uuid.NewString()
	log := logrus.WithField("run_id", runID)

	layout := opts.Layout
	layout.Root = root
	layout = layout.withDefaults()

	numWorkers := opts.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	name := opts.ManifestName
	if name == "" {
		name = DefaultManifestName
	}

	groupIDs, err := discoverGroups(layout)
	if err != nil {
		return nil, err
	}
	log.Infof("Found %d groups under %s, using %d workers", len(groupIDs), layout.ImagesRoot(), numWorkers)

	var progress Progress = noopProgress{}
	if opts.NewProgress != nil {
		progress = opts.NewProgress(len(groupIDs))
	}

	done := make(chan struct{})
	defer close(done)

	ids := genGroups(groupIDs, done)
	resCh := processGroups(layout, ids, numWorkers)
	records, summary := collectResults(resCh, progress, log)

	summary.RunID = runID
	summary.Groups = len(groupIDs)
	summary.ManifestPath = filepath.Join(root, name)

	if err := WriteManifest(summary.ManifestPath, records); err != nil {
		return nil, err
	}
	log.Infof("Wrote %d of %d groups to %s", summary.Records, summary.Groups, summary.ManifestPath)

	if opts.SkipLog != "" {
		if err := writeJSONLines(opts.SkipLog, summary.Skipped); err != nil {
			log.Errorf("write skip log %s: %v", opts.SkipLog, err)
		}
	}
	return summary, nil
}

func discoverGroups(layout Layout) ([]string, error) {
	for _, dir := range []string{layout.Root, layout.ImagesRoot(), layout.MasksRoot()} {
		fi, err := os.Stat(dir)
		if err != nil {
			return nil, &DirectoryNotFoundError{Path: dir, Err: err}
		}
		if !fi.IsDir() {
			return nil, &DirectoryNotFoundError{Path: dir, Err: errors.New("not a directory")}
		}
	}

	entries, err := os.ReadDir(layout.ImagesRoot())
	if err != nil {
		return nil, &DirectoryNotFoundError{Path: layout.ImagesRoot(), Err: err}
	}
	var groupIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			groupIDs = append(groupIDs, entry.Name())
		}
	}
	return groupIDs, nil
}

// Produce group ids into a channel consumed by the workers.
func genGroups(groupIDs []string, done <-chan struct{}) <-chan string {
	ids := make(chan string)
	go func() {
		defer close(ids)
		for _, id := range groupIDs {
			select {
			case ids <- id:
			case <-done:
				return
			}
		}
	}()
	return ids
}

func processGroups(layout Layout, ids <-chan string, numWorkers int) <-chan GroupResult {
	resCh := make(chan GroupResult, numWorkers)
	var wg sync.WaitGroup

	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go consolidateGroups(layout, ids, resCh, &wg)
	}

	go func() {
		wg.Wait()
		close(resCh)
	}()
	return resCh
}

func consolidateGroups(layout Layout, ids <-chan string, resCh chan<- GroupResult, wg *sync.WaitGroup) {
	defer wg.Done()
	for id := range ids {
		logrus.Debugf("Consolidating group %s", id)
		resCh <- Consolidate(id, layout)
	}
}

// collectResults drains resCh in completion order. Excluded groups are dropped here
// and only show up in the summary and the logs.
func collectResults(resCh <-chan GroupResult, progress Progress, log *logrus.Entry) ([]GroupRecord, *BuildSummary) {
	summary := &BuildSummary{}
	var records []GroupRecord
	for res := range resCh {
		summary.Skipped = append(summary.Skipped, res.Skipped...)
		if res.Excluded() {
			summary.ExcludedGroups++
			reason := ""
			if len(res.Skipped) > 0 {
				reason = res.Skipped[len(res.Skipped)-1].Reason
			}
			log.WithField("group_id", res.GroupID).Warnf("Dropping group: %s", reason)
		} else {
			summary.SkippedImages += len(res.Skipped)
			records = append(records, *res.Record)
		}
		if err := progress.Add(1); err != nil {
			log.Debugf("progress: %v", err)
		}
	}
	summary.Records = len(records)
	return records, summary
}

// WriteManifest writes one compact JSON object per line. The file only appears under
// path once every record has been written.
func WriteManifest(path string, records []GroupRecord) error {
	return writeJSONLines(path, records)
}

func writeJSONLines[T any](path string, items []T) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fail(err)
		}
	}
	if err := w.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// ReadManifest loads every record of a manifest file.
func ReadManifest(path string) (records []GroupRecord, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	err = ScanManifest(f, func(rec GroupRecord) error {
		records = append(records, rec)
		return nil
	})
	return records, err
}

const maxLineSize = 64 * 1024 * 1024

// ScanManifest decodes one record per line and passes it to fn without holding the
// whole manifest in memory. Blank lines are ignored. Scanning stops at the first
// error returned by fn.
func ScanManifest(r io.Reader, fn func(GroupRecord) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var rec GroupRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("manifest line %d: %w", line, err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}
