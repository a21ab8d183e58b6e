package labelstats

import (
	"github.com/chewxy/math32"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
)

// Rect is a box in integer pixel coordinates
type Rect struct {
	X      int32 `json:"x"`
	Y      int32 `json:"y"`
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

// PixelRect converts a normalized box to pixels, for a frame of the given size
func PixelRect(b dataset.Box, frameWidth, frameHeight int) Rect {
	fw := float32(frameWidth)
	fh := float32(frameHeight)
	x1 := math32.Round((b.XCenter - b.W/2) * fw)
	y1 := math32.Round((b.YCenter - b.H/2) * fh)
	x2 := math32.Round((b.XCenter + b.W/2) * fw)
	y2 := math32.Round((b.YCenter + b.H/2) * fh)
	return Rect{
		X:      int32(x1),
		Y:      int32(y1),
		Width:  int32(x2 - x1),
		Height: int32(y2 - y1),
	}
}

func (r Rect) X2() int32 {
	return r.X + r.Width
}

func (r Rect) Y2() int32 {
	return r.Y + r.Height
}

func (r Rect) Area() int64 {
	return int64(r.Width) * int64(r.Height)
}

func (r Rect) Intersection(b Rect) Rect {
	x1 := max(r.X, b.X)
	y1 := max(r.Y, b.Y)
	x2 := min(r.X2(), b.X2())
	y2 := min(r.Y2(), b.Y2())
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  max(0, x2-x1),
		Height: max(0, y2-y1),
	}
}

// Intersection over Union
func (r Rect) IOU(b Rect) float32 {
	intersection := r.Intersection(b).Area()
	union := r.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return float32(intersection) / float32(union)
}
