package dataset

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// CacheVersion must be bumped whenever CacheFile or LabelRecord changes
const CacheVersion = "1.0.3"

// CacheSuffix is appended to the split name to form the cache file name
const CacheSuffix = "_labels.cache"

// ErrCacheInvalid means the cache file can't be used, and the labels must be rebuilt
var ErrCacheInvalid = errors.New("Label cache is invalid")

// CacheFile is the persisted result of a build.
// On disk it is JSON, compressed with zstd.
type CacheFile struct {
	Version  string         `json:"version"`
	Hash     string         `json:"hash"`
	Labels   []*LabelRecord `json:"labels"`
	Results  Counts         `json:"results"`
	Messages []string       `json:"msgs"`
}

// HashFrames returns a fingerprint of the ordered list of frame paths
func HashFrames(frames []string) string {
	h := blake3.New()
	for _, f := range frames {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CachePath returns the default cache file for a split directory, which lives alongside the split.
// If cacheDir is not empty, the cache file is placed there instead.
func CachePath(splitDir, cacheDir string) string {
	splitDir = filepath.Clean(splitDir)
	name := filepath.Base(splitDir) + CacheSuffix
	if cacheDir != "" {
		return filepath.Join(cacheDir, name)
	}
	return filepath.Join(filepath.Dir(splitDir), name)
}

// NewCacheFile packages a build report for persistence
func NewCacheFile(report *Report, hash string) *CacheFile {
	return &CacheFile{
		Version:  CacheVersion,
		Hash:     hash,
		Labels:   report.Labels,
		Results:  report.Counts,
		Messages: report.Messages,
	}
}

// SaveCache writes the cache atomically, by writing to a temporary file and renaming it
func SaveCache(filename string, c *CacheFile) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	compressed := enc.EncodeAll(raw, nil)
	enc.Close()

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// LoadCache reads a cache file without validating it.
// A file that exists but cannot be decoded returns ErrCacheInvalid.
func LoadCache(filename string) (*CacheFile, error) {
	compressed, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheInvalid, err)
	}
	c := &CacheFile{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheInvalid, err)
	}
	return c, nil
}

// Validate checks that the cache was written by this version of the code, from the same list of frames
func (c *CacheFile) Validate(hash string) error {
	if c.Version != CacheVersion {
		return fmt.Errorf("%w: version %v, expected %v", ErrCacheInvalid, c.Version, CacheVersion)
	}
	if c.Hash != hash {
		return fmt.Errorf("%w: frame list has changed", ErrCacheInvalid)
	}
	for i, l := range c.Labels {
		if l == nil || len(l.ClassIDs) != len(l.Boxes) {
			return fmt.Errorf("%w: label %v is malformed", ErrCacheInvalid, i)
		}
	}
	return nil
}
