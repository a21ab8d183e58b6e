package storage

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/logs"
)

// GCSScheme is the prefix of a Google Cloud Storage location, eg gs://bucket/path/to/coco.json
const GCSScheme = "gs://"

// Storage is a blob store that we read inputs from and write exports into
type Storage interface {
	// When finished, you must close the WriteCloser
	WriteFile(name string) (io.WriteCloser, error)

	// When finished, you must close the ReadCloser
	ReadFile(name string) (io.ReadCloser, error)
}

func WriteFile(s Storage, name string, content io.Reader) error {
	f, err := s.WriteFile(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, content)
	errClose := f.Close()
	if err != nil {
		return err
	}
	return errClose
}

func ReadFile(s Storage, name string) ([]byte, error) {
	r, err := s.ReadFile(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Location is a parsed input or output location
type Location struct {
	Bucket string // Non-empty for GCS
	Dir    string // Local directory (for filesystem locations)
	Name   string // Object name within the bucket, or file name within Dir
}

func (l Location) IsGCS() bool {
	return l.Bucket != ""
}

func (l Location) String() string {
	if l.IsGCS() {
		return GCSScheme + l.Bucket + "/" + l.Name
	}
	return filepath.Join(l.Dir, l.Name)
}

// IsGCSLocation returns true if location is a gs:// URL
func IsGCSLocation(location string) bool {
	return strings.HasPrefix(location, GCSScheme)
}

// ParseLocation splits an output path into a storage root and a name.
// "gs://bucket/a/b.json" is a GCS object, and anything else is a local file path.
func ParseLocation(location string) (Location, error) {
	if IsGCSLocation(location) {
		rest := strings.TrimPrefix(location, GCSScheme)
		slash := strings.IndexByte(rest, '/')
		if slash <= 0 || slash == len(rest)-1 {
			return Location{}, fmt.Errorf("Invalid GCS location '%v'. Expected gs://bucket/object", location)
		}
		return Location{
			Bucket: rest[:slash],
			Name:   rest[slash+1:],
		}, nil
	}
	if location == "" || strings.HasSuffix(location, "/") {
		return Location{}, fmt.Errorf("Invalid output file '%v'", location)
	}
	return Location{
		Dir:  filepath.Dir(location),
		Name: filepath.Base(location),
	}, nil
}

// Open creates the Storage that serves a location
func Open(log logs.Log, loc Location) (Storage, error) {
	if loc.IsGCS() {
		return NewStorageGCS(log, loc.Bucket)
	}
	return NewStorageFS(log, loc.Dir)
}

// WriteTo writes content to an output location, which may be a local path or a gs:// URL.
// Local parent directories are created as needed.
func WriteTo(log logs.Log, location string, content io.Reader) (Location, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return loc, err
	}
	s, err := Open(log, loc)
	if err != nil {
		return loc, err
	}
	return loc, WriteFile(s, loc.Name, content)
}

// ReadFrom reads the whole of a local file or gs:// object
func ReadFrom(log logs.Log, location string) ([]byte, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}
	s, err := Open(log, loc)
	if err != nil {
		return nil, err
	}
	return ReadFile(s, loc.Name)
}
