package visualize

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math/rand"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
	"github.com/cyclopcam/seqlabel/pkg/storage"
	"github.com/fogleman/gg"
)

const (
	lineWidth   = 2
	jpegQuality = 95
)

// DefaultOutputPath is where a rendering goes when the caller doesn't specify a path.
// For "seq/img1/000001.jpg" this is "seq/img1/000001.vis.jpg".
func DefaultOutputPath(imageFile string) string {
	return strings.TrimSuffix(imageFile, filepath.Ext(imageFile)) + ".vis.jpg"
}

// Render draws label[index] onto its frame, and returns the annotated image.
// index wraps around, so any index selects a label. labels must not be empty.
// rnd picks the box colors, and may be nil.
func Render(labels []*dataset.LabelRecord, classes *dataset.ClassMap, index int, rnd *rand.Rand) (*dataset.LabelRecord, image.Image, error) {
	label := labels[wrapIndex(index, len(labels))]
	img, err := gg.LoadImage(label.ImageFile)
	if err != nil {
		return label, nil, err
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}

	dc := gg.NewContextForImage(img)
	dc.SetLineWidth(lineWidth)
	for i, box := range label.Boxes {
		x1, y1, x2, y2 := box.ToAbsolute(label.Width, label.Height).Corners()
		dc.SetRGB255(rnd.Intn(255), rnd.Intn(255), rnd.Intn(255))
		dc.DrawRectangle(float64(x1), float64(y1), float64(x2-x1), float64(y2-y1))
		dc.Stroke()
		dc.DrawString(classes.Name(label.ClassIDs[i]), float64(x1), float64(max(y1-5, 0)))
	}
	return label, dc.Image(), nil
}

// RenderToFile renders one label for visual spot checks, and writes it to savePath
// (a local path or gs:// location). If savePath is empty, the image is written
// next to the source frame.
// This is a diagnostic tool, so failures are logged and an empty string is returned.
func RenderToFile(log logs.Log, labels []*dataset.LabelRecord, classes *dataset.ClassMap, index int, savePath string) string {
	if len(labels) == 0 {
		log.Warnf("No labels available to visualize")
		return ""
	}
	label, img, err := Render(labels, classes, index, nil)
	if err != nil {
		log.Warnf("Unable to read image %v: %v", label.ImageFile, err)
		return ""
	}
	if savePath == "" {
		savePath = DefaultOutputPath(label.ImageFile)
	}

	encoded := bytes.Buffer{}
	if strings.EqualFold(filepath.Ext(savePath), ".png") {
		err = png.Encode(&encoded, img)
	} else {
		err = jpeg.Encode(&encoded, img, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		log.Warnf("Unable to encode visualization of %v: %v", label.ImageFile, err)
		return ""
	}
	loc, err := storage.WriteTo(log, savePath, &encoded)
	if err != nil {
		log.Warnf("Unable to write visualization to %v: %v", savePath, err)
		return ""
	}
	log.Infof("Wrote visualization to %v", loc)
	return loc.String()
}

func wrapIndex(index, n int) int {
	i := index % n
	if i < 0 {
		i += n
	}
	return i
}
