package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
	"github.com/stretchr/testify/require"
)

// Source boxes of the example split, in pixels (x, y, w, h)
var exampleBoxes = [][4]float64{
	{100, 200, 50, 120},
	{960, 540, 16, 16},
}

// makeExampleSplit creates SEQ-A (3 frames, 2 annotated with absolute boxes) and SEQ-B (2 frames, no JSON)
func makeExampleSplit(t *testing.T) string {
	t.Helper()
	split := filepath.Join(t.TempDir(), "train")
	for seq, frames := range map[string][]string{
		"SEQ-A": {"000001.jpg", "000002.jpg", "000003.jpg"},
		"SEQ-B": {"000001.jpg", "000002.jpg"},
	} {
		dir := filepath.Join(split, seq, "img1")
		require.NoError(t, os.MkdirAll(dir, 0755))
		for _, f := range frames {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), nil, 0644))
		}
	}
	doc := map[string]any{
		"images": []map[string]any{
			{"image_id": 1, "file_name": "000001.jpg", "width": 1920, "height": 1080},
			{"image_id": 2, "file_name": "000002.jpg", "width": 1920, "height": 1080},
		},
		"annotations": []map[string]any{},
	}
	for i, b := range exampleBoxes {
		doc["annotations"] = append(doc["annotations"].([]map[string]any), map[string]any{
			"image_id":    i + 1,
			"category_id": 1 - i,
			"bbox_image":  map[string]float64{"x": b[0], "y": b[1], "w": b[2], "h": b[3]},
		})
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(split, "SEQ-A", "SEQ-A.json"), raw, 0644))
	return split
}

func loadExample(t *testing.T) []*dataset.LabelRecord {
	t.Helper()
	ds, err := dataset.Open(logs.NewTestingLog(t), makeExampleSplit(t), nil, dataset.Options{})
	require.NoError(t, err)
	res, err := ds.Load()
	require.NoError(t, err)
	require.Equal(t, dataset.Counts{Found: 2, Missing: 3, Total: 5}, res.Counts)
	return res.Labels
}

func TestCOCOExampleScenario(t *testing.T) {
	labels := loadExample(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	doc := ToCOCO(labels, dataset.DefaultClasses(), NewCOCOInfo(created))

	require.Equal(t, "2024-05-01T12:00:00.000000", doc.Info.DateCreated)
	require.Equal(t, dataset.CacheVersion, doc.Info.Version)
	require.Len(t, doc.Categories, 7)
	require.Equal(t, COCOCategory{ID: 0, Name: "ball", Supercategory: "object"}, doc.Categories[0])

	require.Len(t, doc.Images, 2)
	require.Len(t, doc.Annotations, 2)
	for i, img := range doc.Images {
		require.Equal(t, i+1, img.ID)
		require.Equal(t, 1920, img.Width)
		require.Equal(t, 1080, img.Height)
	}
	require.Equal(t, "000001.jpg", doc.Images[0].FileName)

	for i, ann := range doc.Annotations {
		require.Equal(t, i+1, ann.ID)
		require.Equal(t, i+1, ann.ImageID)
		require.Equal(t, 1-i, ann.CategoryID)
		for k := 0; k < 4; k++ {
			require.InDelta(t, exampleBoxes[i][k], ann.BBox[k], 1e-3)
		}
		require.InEpsilon(t, exampleBoxes[i][2]*exampleBoxes[i][3], ann.Area, 1e-5)
		require.Equal(t, 0, ann.IsCrowd)
		require.NotNil(t, ann.Segmentation)
	}
}

func TestCOCONumbering(t *testing.T) {
	labels := []*dataset.LabelRecord{
		{ImageFile: "/d/S/img1/a.jpg", Width: 100, Height: 50, ClassIDs: []int{0, 1}, Boxes: []dataset.Box{
			{XCenter: 0.5, YCenter: 0.5, W: 0.2, H: 0.2},
			{XCenter: 0.25, YCenter: 0.25, W: 0.5, H: 0.5},
		}},
		{ImageFile: "/d/S/img1/b.jpg", Width: 200, Height: 200, ClassIDs: []int{2}, Boxes: []dataset.Box{
			{XCenter: 0.5, YCenter: 0.5, W: 1, H: 1},
		}},
	}
	doc := ToCOCO(labels, dataset.DefaultClasses(), COCOInfo{})
	require.Len(t, doc.Annotations, 3)
	require.Equal(t, []int{1, 1, 2}, []int{doc.Annotations[0].ImageID, doc.Annotations[1].ImageID, doc.Annotations[2].ImageID})
	require.Equal(t, 3, doc.Annotations[2].ID)
	require.InDeltaSlice(t, []float64{40, 20, 20, 10}, doc.Annotations[0].BBox[:], 1e-4)
	require.InDeltaSlice(t, []float64{0, 0, 50, 25}, doc.Annotations[1].BBox[:], 1e-4)
	require.InDeltaSlice(t, []float64{0, 0, 200, 200}, doc.Annotations[2].BBox[:], 1e-4)

	// Pure: running again yields the same document
	require.Equal(t, doc, ToCOCO(labels, dataset.DefaultClasses(), COCOInfo{}))
}

func TestWriteCOCO(t *testing.T) {
	labels := loadExample(t)
	out := filepath.Join(t.TempDir(), "nested", "dir", "coco.json")
	doc := ToCOCO(labels, dataset.DefaultClasses(), NewCOCOInfo(time.Now()))
	require.NoError(t, WriteCOCO(logs.NewTestingLog(t), out, doc))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	generic := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &generic))
	for _, k := range []string{"info", "licenses", "categories", "images", "annotations"} {
		require.Contains(t, generic, k)
	}
	require.Empty(t, generic["licenses"])
	ann := generic["annotations"].([]any)[0].(map[string]any)
	require.Equal(t, []any{}, ann["segmentation"])
	require.Len(t, ann["bbox"], 4)
}

func TestWriteYOLO(t *testing.T) {
	labels := loadExample(t)
	outDir := filepath.Join(t.TempDir(), "yolo")
	n, err := WriteYOLO(logs.NewTestingLog(t), outDir, labels, dataset.DefaultClasses())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	classes, err := os.ReadFile(filepath.Join(outDir, "classes.txt"))
	require.NoError(t, err)
	require.Equal(t, "ball\nplayer\ngoalkeeper\nreferee\nstaff\nother\npitch\n", string(classes))

	raw, err := os.ReadFile(filepath.Join(outDir, "SEQ-A", "000001.txt"))
	require.NoError(t, err)
	fields := strings.Fields(string(raw))
	require.Len(t, fields, 5)
	require.Equal(t, "1", fields[0])
	require.Equal(t, "0.065104", fields[1]) // 125 / 1920
	require.FileExists(t, filepath.Join(outDir, "SEQ-A", "000002.txt"))
}

func TestYOLOClassGaps(t *testing.T) {
	classes, err := dataset.NewClassMap(map[int]string{0: "ball", 2: "player"})
	require.NoError(t, err)
	outDir := t.TempDir()
	_, err = WriteYOLO(logs.NewTestingLog(t), outDir, nil, classes)
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(outDir, "classes.txt"))
	require.NoError(t, err)
	require.Equal(t, "ball\nclass1\nplayer\n", string(raw))
}
