package dataset

import (
	"github.com/chewxy/math32"
)

// BoxFormat identifies how the numbers in a bbox_image are to be interpreted
type BoxFormat int

const (
	BoxFormatNormalizedCenter BoxFormat = iota // x_center, y_center, w, h in [0,1]
	BoxFormatAbsoluteTopLeft                   // x, y, w, h in pixels, origin at top-left
)

func (f BoxFormat) String() string {
	switch f {
	case BoxFormatNormalizedCenter:
		return "normalized-center"
	case BoxFormatAbsoluteTopLeft:
		return "absolute-top-left"
	}
	return "unknown"
}

// Box is a normalized center box: (XCenter, YCenter, W, H), each relative to the frame size.
type Box struct {
	XCenter float32 `json:"xc"`
	YCenter float32 `json:"yc"`
	W       float32 `json:"w"`
	H       float32 `json:"h"`
}

// Valid is false for boxes without a positive area
func (b Box) Valid() bool {
	return b.W > 0 && b.H > 0
}

// AbsBox is an absolute top-left box in pixels (the COCO convention)
type AbsBox struct {
	X float64
	Y float64
	W float64
	H float64
}

func (b AbsBox) Area() float64 {
	return b.W * b.H
}

// Corners returns the integer pixel corners (x1,y1) and (x2,y2)
func (b AbsBox) Corners() (x1, y1, x2, y2 int) {
	return int(b.X), int(b.Y), int(b.X + b.W), int(b.Y + b.H)
}

// InferBoxFormat decides whether a bbox_image holds pixels or ratios.
// If either w or h is greater than 1, the box is taken to be in absolute pixels.
// NOTE: A normalized box can never be wider than the frame, but an absolute box
// that is exactly 1 pixel wide and 1 pixel high is indistinguishable from a
// full-frame normalized box, and is classified as normalized.
func InferBoxFormat(b *BBoxImage) BoxFormat {
	if value(b.W) > 1 || value(b.H) > 1 {
		return BoxFormatAbsoluteTopLeft
	}
	return BoxFormatNormalizedCenter
}

// NormalizeBox converts a bbox_image of the given format into a normalized center box.
// frameWidth and frameHeight are only used for BoxFormatAbsoluteTopLeft.
// Absent fields are treated as zero.
func NormalizeBox(b *BBoxImage, format BoxFormat, frameWidth, frameHeight int) Box {
	w := value(b.W)
	h := value(b.H)
	switch format {
	case BoxFormatAbsoluteTopLeft:
		fw := float64(frameWidth)
		fh := float64(frameHeight)
		return Box{
			XCenter: float32((value(b.X) + w/2) / fw),
			YCenter: float32((value(b.Y) + h/2) / fh),
			W:       float32(w / fw),
			H:       float32(h / fh),
		}
	default:
		return Box{
			XCenter: float32(value(b.XCenter)),
			YCenter: float32(value(b.YCenter)),
			W:       float32(w),
			H:       float32(h),
		}
	}
}

// ToAbsolute converts a normalized center box to an absolute top-left box
// for a frame of the given size.
func (b Box) ToAbsolute(frameWidth, frameHeight int) AbsBox {
	fw := float64(frameWidth)
	fh := float64(frameHeight)
	return AbsBox{
		X: (float64(b.XCenter) - float64(b.W)/2) * fw,
		Y: (float64(b.YCenter) - float64(b.H)/2) * fh,
		W: float64(b.W) * fw,
		H: float64(b.H) * fh,
	}
}

// IsFinite is false if any coordinate is NaN or Inf
func (b Box) IsFinite() bool {
	for _, v := range [4]float32{b.XCenter, b.YCenter, b.W, b.H} {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
