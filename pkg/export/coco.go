package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
	"github.com/cyclopcam/seqlabel/pkg/storage"
)

// COCO is a COCO object detection document
type COCO struct {
	Info        COCOInfo         `json:"info"`
	Licenses    []COCOLicense    `json:"licenses"`
	Categories  []COCOCategory   `json:"categories"`
	Images      []COCOImage      `json:"images"`
	Annotations []COCOAnnotation `json:"annotations"`
}

type COCOInfo struct {
	Description string `json:"description"`
	Version     string `json:"version"`
	DateCreated string `json:"date_created"`
}

type COCOLicense struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type COCOCategory struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Supercategory string `json:"supercategory"`
}

type COCOImage struct {
	ID       int    `json:"id"`
	FileName string `json:"file_name"`
	Height   int    `json:"height"`
	Width    int    `json:"width"`
}

type COCOAnnotation struct {
	ID           int         `json:"id"`
	ImageID      int         `json:"image_id"`
	CategoryID   int         `json:"category_id"`
	BBox         [4]float64  `json:"bbox"` // x, y, width, height in pixels, top-left origin
	Area         float64     `json:"area"`
	IsCrowd      int         `json:"iscrowd"`
	Segmentation [][]float64 `json:"segmentation"`
}

// NewCOCOInfo returns the info block that we stamp on our exports
func NewCOCOInfo(created time.Time) COCOInfo {
	return COCOInfo{
		Description: "SoccerNet converted to COCO",
		Version:     dataset.CacheVersion,
		DateCreated: created.UTC().Format("2006-01-02T15:04:05.000000"),
	}
}

// ToCOCO converts labels into a COCO document.
// Images and annotations are numbered from 1, in label order.
// Labels are not modified.
func ToCOCO(labels []*dataset.LabelRecord, classes *dataset.ClassMap, info COCOInfo) *COCO {
	doc := &COCO{
		Info:        info,
		Licenses:    []COCOLicense{},
		Categories:  []COCOCategory{},
		Images:      make([]COCOImage, 0, len(labels)),
		Annotations: make([]COCOAnnotation, 0, dataset.NumObjects(labels)),
	}
	for _, id := range classes.IDs() {
		doc.Categories = append(doc.Categories, COCOCategory{
			ID:            id,
			Name:          classes.Name(id),
			Supercategory: "object",
		})
	}

	annID := 1
	for i, label := range labels {
		imgID := i + 1
		doc.Images = append(doc.Images, COCOImage{
			ID:       imgID,
			FileName: filepath.Base(label.ImageFile),
			Height:   label.Height,
			Width:    label.Width,
		})
		for j, box := range label.Boxes {
			abs := box.ToAbsolute(label.Width, label.Height)
			doc.Annotations = append(doc.Annotations, COCOAnnotation{
				ID:           annID,
				ImageID:      imgID,
				CategoryID:   label.ClassIDs[j],
				BBox:         [4]float64{abs.X, abs.Y, abs.W, abs.H},
				Area:         abs.Area(),
				IsCrowd:      0,
				Segmentation: [][]float64{},
			})
			annID++
		}
	}
	return doc
}

// WriteCOCO writes the document as JSON to a local path or a gs:// location
func WriteCOCO(log logs.Log, location string, doc *COCO) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	loc, err := storage.WriteTo(log, location, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	log.Infof("Saved COCO annotations to %v (%v images, %v annotations)", loc, len(doc.Images), len(doc.Annotations))
	return nil
}
