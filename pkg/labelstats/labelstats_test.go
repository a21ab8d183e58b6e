package labelstats

import (
	"testing"

	"github.com/cyclopcam/seqlabel/pkg/dataset"
	"github.com/stretchr/testify/require"
)

func TestRect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: 0, Width: 10, Height: 10}
	require.Equal(t, Rect{X: 5, Y: 0, Width: 5, Height: 10}, a.Intersection(b))
	require.InDelta(t, 50.0/150.0, a.IOU(b), 1e-6)
	require.Equal(t, float32(1), a.IOU(a))
	require.Equal(t, float32(0), a.IOU(Rect{X: 100, Y: 100, Width: 1, Height: 1}))
	require.Equal(t, float32(0), Rect{}.IOU(Rect{}))

	r := PixelRect(dataset.Box{XCenter: 0.5, YCenter: 0.5, W: 0.5, H: 0.25}, 200, 100)
	require.Equal(t, Rect{X: 50, Y: 38, Width: 100, Height: 25}, r)
}

func TestSummarize(t *testing.T) {
	labels := []*dataset.LabelRecord{
		{ImageFile: "/d/S1/img1/1.jpg", Width: 100, Height: 100, ClassIDs: []int{0, 1, 1}, Boxes: []dataset.Box{
			{XCenter: 0.5, YCenter: 0.5, W: 0.05, H: 0.02},
			{XCenter: 0.5, YCenter: 0.5, W: 0.1, H: 0.3},
			{XCenter: 0.2, YCenter: 0.2, W: 0.1, H: 0.1},
		}},
		{ImageFile: "/d/S2/img1/1.jpg", Width: 100, Height: 100, ClassIDs: []int{3}, Boxes: []dataset.Box{
			{XCenter: 0.5, YCenter: 0.5, W: 0.1, H: 0.1},
		}},
	}
	s := Summarize(labels, dataset.DefaultClasses())
	require.Equal(t, 2, s.Frames)
	require.Equal(t, 4, s.Boxes)
	require.Equal(t, map[string]int{"ball": 1, "player": 2, "referee": 1}, s.PerClass)
	require.Equal(t, map[string]int{"S1": 1, "S2": 1}, s.PerSequence)
	require.InDelta(t, 5, s.MinBoxSize, 1e-4)
	require.InDelta(t, 30, s.MaxBoxSize, 1e-4)
	require.InDelta(t, 2, s.BoxesPerFrame, 1e-6)
	require.InDelta(t, 13.75, s.MeanBoxSize, 1e-3)
	require.InDelta(t, 9.6014, s.StdBoxSize, 1e-3)

	empty := Summarize(nil, dataset.DefaultClasses())
	require.Equal(t, float32(0), empty.MinBoxSize)
	require.Equal(t, 0, empty.Frames)
}

func TestFindOverlaps(t *testing.T) {
	label := &dataset.LabelRecord{
		ImageFile: "/d/S1/img1/1.jpg",
		Width:     1000,
		Height:    1000,
		ClassIDs:  []int{1, 1, 2, 1},
		Boxes: []dataset.Box{
			{XCenter: 0.5, YCenter: 0.5, W: 0.1, H: 0.1},
			{XCenter: 0.501, YCenter: 0.5, W: 0.1, H: 0.1}, // near duplicate of 0
			{XCenter: 0.5, YCenter: 0.5, W: 0.1, H: 0.1},   // same place, different class
			{XCenter: 0.9, YCenter: 0.9, W: 0.05, H: 0.05}, // far away
		},
	}
	overlaps := FindOverlaps(label, 0.9)
	require.Len(t, overlaps, 1)
	require.Equal(t, 0, overlaps[0].A)
	require.Equal(t, 1, overlaps[0].B)
	require.Equal(t, 1, overlaps[0].ClassID)
	require.Greater(t, overlaps[0].IoU, float32(0.9))

	require.Empty(t, FindOverlaps(label, 0.99))
	require.Len(t, FindAllOverlaps([]*dataset.LabelRecord{label, label}, 0.9), 2)
}
