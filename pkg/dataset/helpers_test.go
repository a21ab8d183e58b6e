package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testImage struct {
	ID       any // int or string
	FileName string
	Width    int
	Height   int
}

type testAnnotation struct {
	ImageID  any
	Category int
	BBox     map[string]float64 // nil means no bbox_image
}

// writeFrames creates empty frame files in <split>/<seq>/img1
func writeFrames(t *testing.T, splitDir, seq string, names ...string) []string {
	t.Helper()
	dir := filepath.Join(splitDir, seq, FrameDirName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	paths := []string{}
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("not really a jpeg"), 0644))
		paths = append(paths, p)
	}
	return paths
}

// writeAnnotations writes <split>/<seq>/<seq>.json
func writeAnnotations(t *testing.T, splitDir, seq string, images []testImage, anns []testAnnotation) {
	t.Helper()
	jimages := []map[string]any{}
	for _, img := range images {
		jimages = append(jimages, map[string]any{
			"image_id":  img.ID,
			"file_name": img.FileName,
			"width":     img.Width,
			"height":    img.Height,
		})
	}
	janns := []map[string]any{}
	for _, a := range anns {
		j := map[string]any{
			"image_id":    a.ImageID,
			"category_id": a.Category,
		}
		if a.BBox != nil {
			j["bbox_image"] = a.BBox
		}
		janns = append(janns, j)
	}
	raw, err := json.Marshal(map[string]any{
		"info":        map[string]any{"name": seq},
		"images":      jimages,
		"annotations": janns,
	})
	require.NoError(t, err)
	writeRawAnnotations(t, splitDir, seq, raw)
}

func writeRawAnnotations(t *testing.T, splitDir, seq string, raw []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(splitDir, seq), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(splitDir, seq, seq+".json"), raw, 0644))
}

func absBox(x, y, w, h float64) map[string]float64 {
	return map[string]float64{"x": x, "y": y, "w": w, "h": h}
}

func normBox(xc, yc, w, h float64) map[string]float64 {
	return map[string]float64{"x_center": xc, "y_center": yc, "w": w, "h": h}
}

// makeExampleSplit creates the two sequence example:
// SEQ-A has 3 frames, of which 2 are listed and annotated with one absolute box each.
// SEQ-B has 2 frames and no JSON file.
func makeExampleSplit(t *testing.T) string {
	t.Helper()
	split := filepath.Join(t.TempDir(), "train")
	writeFrames(t, split, "SEQ-A", "000001.jpg", "000002.jpg", "000003.jpg")
	writeAnnotations(t, split, "SEQ-A",
		[]testImage{
			{ID: "1001", FileName: "000001.jpg", Width: 1920, Height: 1080},
			{ID: "1002", FileName: "000002.jpg", Width: 1920, Height: 1080},
		},
		[]testAnnotation{
			{ImageID: "1001", Category: 1, BBox: absBox(100, 200, 50, 120)},
			{ImageID: "1002", Category: 0, BBox: absBox(960, 540, 16, 16)},
		})
	writeFrames(t, split, "SEQ-B", "000001.jpg", "000002.jpg")
	return split
}
