package labelstats

import (
	"sort"

	flatbush "github.com/bmharper/flatbush-go"
	"github.com/chewxy/math32"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
)

// Summary describes the contents of a label set
type Summary struct {
	Frames        int            `json:"frames"`
	Boxes         int            `json:"boxes"`
	PerClass      map[string]int `json:"perClass"`    // Number of boxes of each class
	PerSequence   map[string]int `json:"perSequence"` // Number of labelled frames in each sequence
	MinBoxSize    float32        `json:"minBoxSize"`  // Smallest max(width, height) of any box, in pixels
	MaxBoxSize    float32        `json:"maxBoxSize"`  // Largest max(width, height) of any box, in pixels
	MeanBoxSize   float32        `json:"meanBoxSize"`
	StdBoxSize    float32        `json:"stdBoxSize"`
	BoxesPerFrame float32        `json:"boxesPerFrame"`
}

// Summarize counts frames and boxes, by class and by sequence
func Summarize(labels []*dataset.LabelRecord, classes *dataset.ClassMap) *Summary {
	s := &Summary{
		PerClass:    map[string]int{},
		PerSequence: map[string]int{},
		MinBoxSize:  math32.MaxFloat32,
	}
	sizes := []float32{}
	for _, l := range labels {
		s.Frames++
		s.PerSequence[l.Sequence()]++
		for i, b := range l.Boxes {
			s.Boxes++
			s.PerClass[classes.Name(l.ClassIDs[i])]++
			size := math32.Max(b.W*float32(l.Width), b.H*float32(l.Height))
			s.MinBoxSize = math32.Min(s.MinBoxSize, size)
			s.MaxBoxSize = math32.Max(s.MaxBoxSize, size)
			sizes = append(sizes, size)
		}
	}
	if s.Boxes == 0 {
		s.MinBoxSize = 0
	} else {
		s.MeanBoxSize, s.StdBoxSize = meanStd(sizes)
	}
	if s.Frames != 0 {
		s.BoxesPerFrame = float32(s.Boxes) / float32(s.Frames)
	}
	return s
}

// Returns the mean and standard deviation of a non-empty sample
func meanStd(samples []float32) (float32, float32) {
	sum := float32(0)
	for _, v := range samples {
		sum += v
	}
	mean := sum / float32(len(samples))
	variance := float32(0)
	for _, v := range samples {
		variance += (v - mean) * (v - mean)
	}
	variance /= float32(len(samples))
	return mean, math32.Sqrt(variance)
}

// Overlap is a pair of boxes of the same class, in the same frame, that overlap
// so much that one of them is probably a duplicate annotation.
type Overlap struct {
	ImageFile string  `json:"imageFile"`
	ClassID   int     `json:"classID"`
	A         int     `json:"a"` // Index into LabelRecord.Boxes
	B         int     `json:"b"` // Index into LabelRecord.Boxes. Always greater than A.
	IoU       float32 `json:"iou"`
}

// FindOverlaps returns the pairs of same-class boxes in a frame whose IoU is at least minIoU
func FindOverlaps(label *dataset.LabelRecord, minIoU float32) []Overlap {
	rects := make([]Rect, len(label.Boxes))
	fb := flatbush.NewFlatbush[int32]()
	fb.Reserve(len(label.Boxes))
	for i, b := range label.Boxes {
		rects[i] = PixelRect(b, label.Width, label.Height)
		fb.Add(rects[i].X, rects[i].Y, rects[i].X2(), rects[i].Y2())
	}
	fb.Finish()

	result := []Overlap{}
	for i, r := range rects {
		for _, j := range fb.Search(r.X, r.Y, r.X2(), r.Y2()) {
			if j <= i || label.ClassIDs[i] != label.ClassIDs[j] {
				continue
			}
			iou := r.IOU(rects[j])
			if iou >= minIoU {
				result = append(result, Overlap{
					ImageFile: label.ImageFile,
					ClassID:   label.ClassIDs[i],
					A:         i,
					B:         j,
					IoU:       iou,
				})
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].A != result[j].A {
			return result[i].A < result[j].A
		}
		return result[i].B < result[j].B
	})
	return result
}

// FindAllOverlaps runs FindOverlaps over every label
func FindAllOverlaps(labels []*dataset.LabelRecord, minIoU float32) []Overlap {
	all := []Overlap{}
	for _, l := range labels {
		all = append(all, FindOverlaps(l, minIoU)...)
	}
	return all
}
