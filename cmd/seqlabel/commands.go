package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cyclopcam/seqlabel/pkg/dataset"
	"github.com/cyclopcam/seqlabel/pkg/export"
	"github.com/cyclopcam/seqlabel/pkg/labeldb"
	"github.com/cyclopcam/seqlabel/pkg/labelstats"
	"github.com/cyclopcam/seqlabel/pkg/visualize"
)

func (a *app) scan(splitDir string) error {
	ds, err := a.open(splitDir, false)
	if err != nil {
		return err
	}
	for _, f := range ds.ScannedFrames() {
		fmt.Println(f)
	}
	return nil
}

func (a *app) labels(splitDir string, rebuild bool) error {
	res, err := a.load(splitDir, rebuild)
	if err != nil {
		return err
	}
	source := "built"
	if res.FromCache {
		source = "cache"
	}
	fmt.Printf("%v labels (%v), from %v %v\n", len(res.Labels), res.Counts, source, res.CacheFile)
	return nil
}

func (a *app) coco(splitDir, output string) error {
	res, err := a.load(splitDir, false)
	if err != nil {
		return err
	}
	doc := export.ToCOCO(res.Labels, a.classes, export.NewCOCOInfo(time.Now()))
	return export.WriteCOCO(a.log, a.cfg.ResolveOutput(output), doc)
}

func (a *app) yolo(splitDir, outDir string) error {
	res, err := a.load(splitDir, false)
	if err != nil {
		return err
	}
	_, err = export.WriteYOLO(a.log, outDir, res.Labels, a.classes)
	return err
}

// If classID is not negative, the frames containing that class are also listed
func (a *app) db(splitDir, dbFilename string, classID int) error {
	res, err := a.load(splitDir, false)
	if err != nil {
		return err
	}
	db, err := labeldb.Open(a.log, dbFilename)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Import(res.Labels, a.classes); err != nil {
		return err
	}
	last, err := db.LastImport()
	if err != nil {
		return err
	}
	seqs, err := db.Sequences()
	if err != nil {
		return err
	}
	fmt.Printf("%v: %v sequences, %v frames, %v boxes\n", dbFilename, len(seqs), last.Frames, last.Boxes)
	counts, err := db.ClassCounts()
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Printf("%3d %-12s %v\n", c.ClassID, c.Name, c.Boxes)
	}
	if classID < 0 {
		return nil
	}
	if !a.classes.Has(classID) {
		return fmt.Errorf("%w: %v", dataset.ErrUnknownClass, classID)
	}
	frames, err := db.FramesWithClass(classID)
	if err != nil {
		return err
	}
	fmt.Printf("%v frames contain %v:\n", len(frames), a.classes.Name(classID))
	for _, f := range frames {
		fmt.Println(f.ImageFile)
	}
	return nil
}

func (a *app) vis(splitDir string, index int, output string) error {
	res, err := a.load(splitDir, false)
	if err != nil {
		return err
	}
	if output != "" {
		output = a.cfg.ResolveOutput(output)
	}
	// Visualization failures are not fatal, and have already been logged
	if saved := visualize.RenderToFile(a.log, res.Labels, a.classes, index, output); saved != "" {
		fmt.Println(saved)
	}
	return nil
}

func (a *app) stats(splitDir string, minIoU float32) error {
	res, err := a.load(splitDir, false)
	if err != nil {
		return err
	}
	summary := labelstats.Summarize(res.Labels, a.classes)
	overlaps := labelstats.FindAllOverlaps(res.Labels, minIoU)
	out := struct {
		Summary  *labelstats.Summary  `json:"summary"`
		Overlaps []labelstats.Overlap `json:"overlaps"`
	}{summary, overlaps}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return err
	}
	if len(overlaps) != 0 {
		a.log.Warnf("Found %v pairs of boxes with IoU >= %.2f, which are probably duplicate annotations", len(overlaps), minIoU)
	}
	return nil
}
