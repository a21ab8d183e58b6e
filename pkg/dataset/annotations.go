package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// ImageID is the key that joins annotations to images inside one sequence JSON file.
// Some producers write it as a number, others as a string, so we accept both.
type ImageID string

func (id *ImageID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) != 0 && b[0] == '"' {
		s := ""
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ImageID(s)
		return nil
	}
	n := json.Number("")
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("Invalid image_id %v: %w", string(b), err)
	}
	*id = ImageID(n.String())
	return nil
}

// ImageInfo is an entry of the "images" array
type ImageInfo struct {
	ImageID  ImageID `json:"image_id"`
	FileName string  `json:"file_name"`
	Height   int     `json:"height"`
	Width    int     `json:"width"`
}

// BBoxImage is the "bbox_image" object of an annotation.
// It holds either a normalized center box (x_center, y_center, w, h),
// or an absolute pixel box with a top-left origin (x, y, w, h).
// Absent fields are nil.
type BBoxImage struct {
	XCenter *float64 `json:"x_center,omitempty"`
	YCenter *float64 `json:"y_center,omitempty"`
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	W       *float64 `json:"w,omitempty"`
	H       *float64 `json:"h,omitempty"`
}

// IsEmpty is true when no bbox field was present
func (b *BBoxImage) IsEmpty() bool {
	return b == nil || (b.XCenter == nil && b.YCenter == nil && b.X == nil && b.Y == nil && b.W == nil && b.H == nil)
}

// RawAnnotation is an entry of the "annotations" array
type RawAnnotation struct {
	ImageID    ImageID    `json:"image_id"`
	CategoryID *int       `json:"category_id"` // nil if absent
	BBoxImage  *BBoxImage `json:"bbox_image"`
}

// AnnotationFile is the subset of a sequence JSON file that we consume
type AnnotationFile struct {
	Images      []ImageInfo     `json:"images"`
	Annotations []RawAnnotation `json:"annotations"`
}

// SequenceAnnotations holds the lookup structures of one sequence
type SequenceAnnotations struct {
	Images               []ImageInfo // In file order, for first-match file name lookup
	ImagesByID           map[ImageID]*ImageInfo
	AnnotationsByImageID map[ImageID][]RawAnnotation
}

// LoadAnnotations reads and indexes one sequence JSON file
func LoadAnnotations(filename string) (*SequenceAnnotations, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseAnnotations(raw)
}

// ParseAnnotations indexes the contents of a sequence JSON file
func ParseAnnotations(raw []byte) (*SequenceAnnotations, error) {
	doc := struct {
		Images      *[]ImageInfo     `json:"images"`
		Annotations *[]RawAnnotation `json:"annotations"`
	}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Images == nil {
		return nil, fmt.Errorf("Missing 'images' array")
	}
	if doc.Annotations == nil {
		return nil, fmt.Errorf("Missing 'annotations' array")
	}
	return IndexAnnotations(&AnnotationFile{
		Images:      *doc.Images,
		Annotations: *doc.Annotations,
	}), nil
}

// IndexAnnotations builds the per-image lookups.
// Annotations keep their file order within each image.
func IndexAnnotations(f *AnnotationFile) *SequenceAnnotations {
	s := &SequenceAnnotations{
		Images:               f.Images,
		ImagesByID:           make(map[ImageID]*ImageInfo, len(f.Images)),
		AnnotationsByImageID: map[ImageID][]RawAnnotation{},
	}
	for i := range s.Images {
		s.ImagesByID[s.Images[i].ImageID] = &s.Images[i]
	}
	for _, ann := range f.Annotations {
		s.AnnotationsByImageID[ann.ImageID] = append(s.AnnotationsByImageID[ann.ImageID], ann)
	}
	return s
}

// FindImage returns the first image whose file name matches, or nil.
// If the producer wrote duplicate file names, the first one wins.
func (s *SequenceAnnotations) FindImage(fileName string) *ImageInfo {
	for i := range s.Images {
		if s.Images[i].FileName == fileName {
			return &s.Images[i]
		}
	}
	return nil
}

// Annotations returns the annotations of an image (nil if there are none)
func (s *SequenceAnnotations) Annotations(id ImageID) []RawAnnotation {
	return s.AnnotationsByImageID[id]
}

// String form of an ImageID, for messages
func (id ImageID) String() string {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return string(id)
	}
	return strconv.Quote(string(id))
}
