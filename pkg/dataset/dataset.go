package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/logs"
)

// ErrEmptyDataset is returned when a split yields no usable labels at all
var ErrEmptyDataset = errors.New("No valid images found")

type Options struct {
	CacheDir     string // If empty, the cache file is written alongside the split directory
	ForceRebuild bool   // Ignore any existing cache file
}

// Dataset is one split of a sequence dataset (eg "train" or "valid").
// It is not safe for concurrent use, and two Datasets must not build
// the same cache file at the same time.
type Dataset struct {
	Log       logs.Log
	SplitDir  string
	Classes   *ClassMap
	CacheFile string

	forceRebuild bool
	scanned      []string // Every frame found by the scanner. The cache hash is computed over this.
	frames       []string // Frames that have labels, after the most recent Load
}

// LoadResult is the outcome of Load
type LoadResult struct {
	Labels    []*LabelRecord
	Counts    Counts
	Messages  []string
	FromCache bool
	CacheFile string
}

// Open scans the split directory. Labels are only read when Load is called.
func Open(log logs.Log, splitDir string, classes *ClassMap, options Options) (*Dataset, error) {
	if classes == nil {
		classes = DefaultClasses()
	}
	st, err := os.Stat(splitDir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%v is not a directory", splitDir)
	}
	scanned, err := ScanSplit(log, splitDir)
	if err != nil {
		return nil, fmt.Errorf("Failed to scan %v: %w", splitDir, err)
	}
	return &Dataset{
		Log:          log,
		SplitDir:     splitDir,
		Classes:      classes,
		CacheFile:    CachePath(splitDir, options.CacheDir),
		forceRebuild: options.ForceRebuild,
		scanned:      scanned,
		frames:       scanned,
	}, nil
}

// ScannedFrames returns every frame that the scanner found
func (d *Dataset) ScannedFrames() []string {
	return d.scanned
}

// Frames returns the working frame list. After Load, this is exactly the
// set of frames that have labels, which may be fewer than ScannedFrames.
func (d *Dataset) Frames() []string {
	return d.frames
}

// Labels is Load, but returns only the labels
func (d *Dataset) Labels() ([]*LabelRecord, error) {
	res, err := d.Load()
	if err != nil {
		return nil, err
	}
	return res.Labels, nil
}

// Load returns the labels from the cache if it is still valid, and otherwise
// rebuilds them from the annotation files and rewrites the cache.
// Returns ErrEmptyDataset if there are no labels.
func (d *Dataset) Load() (*LoadResult, error) {
	hash := HashFrames(d.scanned)

	var res *LoadResult
	if !d.forceRebuild {
		cache, err := d.readCache(hash)
		if err == nil {
			res = &LoadResult{
				Labels:    cache.Labels,
				Counts:    cache.Results,
				Messages:  cache.Messages,
				FromCache: true,
				CacheFile: d.CacheFile,
			}
			c := res.Counts
			d.Log.Infof("Scanning %v... %v images, %v backgrounds, %v corrupt", d.CacheFile, c.Found, c.Missing+c.Empty, c.Corrupt)
			if len(res.Messages) != 0 {
				d.Log.Infof("%v", strings.Join(res.Messages, "\n"))
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			d.Log.Infof("Rebuilding labels: %v", err)
		}
	}

	if res == nil {
		res = d.build(hash)
		// The cache is only honoured when it was built from exactly the frames we have now
		d.forceRebuild = false
	}

	if len(res.Labels) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrEmptyDataset, d.CacheFile)
	}

	d.frames = make([]string, len(res.Labels))
	for i, l := range res.Labels {
		d.frames[i] = l.ImageFile
	}

	if NumObjects(res.Labels) == 0 {
		d.Log.Warnf("No objects found in dataset. Training may not work correctly.")
	}
	return res, nil
}

func (d *Dataset) readCache(hash string) (*CacheFile, error) {
	cache, err := LoadCache(d.CacheFile)
	if err != nil {
		return nil, err
	}
	if err := cache.Validate(hash); err != nil {
		return nil, err
	}
	return cache, nil
}

func (d *Dataset) build(hash string) *LoadResult {
	report := BuildLabels(d.Log, d.Classes, d.scanned)
	cache := NewCacheFile(report, hash)
	if err := d.saveCache(cache); err != nil {
		d.Log.Warnf("Cache directory %v is not writeable, cache not saved: %v", filepath.Dir(d.CacheFile), err)
	} else {
		d.Log.Infof("New cache created: %v", d.CacheFile)
	}
	return &LoadResult{
		Labels:    report.Labels,
		Counts:    report.Counts,
		Messages:  report.Messages,
		FromCache: false,
		CacheFile: d.CacheFile,
	}
}

func (d *Dataset) saveCache(cache *CacheFile) error {
	if err := os.MkdirAll(filepath.Dir(d.CacheFile), 0755); err != nil {
		return err
	}
	return SaveCache(d.CacheFile, cache)
}
