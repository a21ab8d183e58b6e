package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
)

// YOLOLine formats one box as "class x_center y_center width height"
func YOLOLine(classID int, b dataset.Box) string {
	return fmt.Sprintf("%d %.6f %.6f %.6f %.6f", classID, b.XCenter, b.YCenter, b.W, b.H)
}

// YOLOFile is the relative path of the label file for a frame, eg "SNGS-060/000001.txt"
func YOLOFile(label *dataset.LabelRecord) string {
	base := strings.TrimSuffix(label.FileName(), filepath.Ext(label.FileName()))
	return filepath.Join(label.Sequence(), base+".txt")
}

// WriteYOLO writes one text file per labelled frame into outDir, plus classes.txt.
// classes.txt lists class names by id, with "class<N>" filling any gaps.
// Returns the number of label files written.
func WriteYOLO(log logs.Log, outDir string, labels []*dataset.LabelRecord, classes *dataset.ClassMap) (int, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, err
	}
	ids := classes.IDs()
	names := []string{}
	for id := 0; len(ids) != 0 && id <= ids[len(ids)-1]; id++ {
		if classes.Has(id) {
			names = append(names, classes.Name(id))
		} else {
			names = append(names, fmt.Sprintf("class%v", id))
		}
	}
	if err := os.WriteFile(filepath.Join(outDir, "classes.txt"), []byte(strings.Join(names, "\n")+"\n"), 0644); err != nil {
		return 0, err
	}

	n := 0
	for _, label := range labels {
		lines := make([]string, len(label.Boxes))
		for i, b := range label.Boxes {
			lines[i] = YOLOLine(label.ClassIDs[i], b)
		}
		fn := filepath.Join(outDir, YOLOFile(label))
		if err := os.MkdirAll(filepath.Dir(fn), 0755); err != nil {
			return n, err
		}
		if err := os.WriteFile(fn, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
			return n, fmt.Errorf("Failed to write %v: %w", fn, err)
		}
		n++
	}
	log.Infof("Wrote %v YOLO label files to %v", n, outDir)
	return n, nil
}
