package dataset

import (
	"fmt"
	"path/filepath"
)

// LabelRecord is the normalized label set of one frame.
// ClassIDs and Boxes are index-aligned, and there is always at least one box.
type LabelRecord struct {
	ImageFile string `json:"imageFile"`
	Height    int    `json:"height"`
	Width     int    `json:"width"`
	ClassIDs  []int  `json:"classIDs"`
	Boxes     []Box  `json:"boxes"` // Normalized center format
}

// Sequence returns the name of the sequence that owns this frame
func (l *LabelRecord) Sequence() string {
	return filepath.Base(filepath.Dir(filepath.Dir(l.ImageFile)))
}

func (l *LabelRecord) FileName() string {
	return filepath.Base(l.ImageFile)
}

// NumObjects is the number of boxes in the frame
func (l *LabelRecord) NumObjects() int {
	return len(l.Boxes)
}

// Counts are the outcome tallies of a build.
// Missing: frame has no annotation file, or no entry in its sequence's image list.
// Empty: frame has no annotations, or none of its boxes survived validation.
// Corrupt: number of sequences whose annotation file could not be processed.
type Counts struct {
	Found   int `json:"found"`
	Missing int `json:"missing"`
	Empty   int `json:"empty"`
	Corrupt int `json:"corrupt"`
	Total   int `json:"total"` // Number of scanned frames
}

func (c *Counts) add(b Counts) {
	c.Found += b.Found
	c.Missing += b.Missing
	c.Empty += b.Empty
	c.Corrupt += b.Corrupt
}

func (c Counts) String() string {
	return fmt.Sprintf("%v images with annotations, %v missing, %v empty, %v corrupt", c.Found, c.Missing, c.Empty, c.Corrupt)
}

// ErrorKind classifies the outcome of one sequence
type ErrorKind int

const (
	ErrorKindNone              ErrorKind = iota
	ErrorKindMissingAnnotation           // Sequence has frames but no JSON file
	ErrorKindSequenceCorrupt             // JSON file could not be read, parsed, or processed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "ok"
	case ErrorKindMissingAnnotation:
		return "missing-annotation"
	case ErrorKindSequenceCorrupt:
		return "corrupt"
	}
	return "unknown"
}

// SequenceResult is the outcome of processing one sequence.
// If Kind is not ErrorKindNone, then Labels is nil.
type SequenceResult struct {
	Name   string
	Labels []*LabelRecord
	Counts Counts
	Kind   ErrorKind
	Err    error
}

// Report is the aggregate of all sequence results of one build
type Report struct {
	Labels    []*LabelRecord
	Counts    Counts
	Messages  []string
	Sequences []SequenceResult
}

// NumObjects is the total number of boxes over all labels
func NumObjects(labels []*LabelRecord) int {
	n := 0
	for _, l := range labels {
		n += len(l.Boxes)
	}
	return n
}
