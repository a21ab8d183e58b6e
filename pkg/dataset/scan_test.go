package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func TestScanOrder(t *testing.T) {
	split := filepath.Join(t.TempDir(), "valid")
	// Create things out of order, to make sure we don't depend on directory order
	writeFrames(t, split, "SNGS-061", "000002.jpg", "000001.jpg")
	writeFrames(t, split, "SNGS-060", "000010.jpg", "000003.jpg", "notes.txt")
	// Sequence without a frame folder
	require.NoError(t, os.MkdirAll(filepath.Join(split, "SNGS-059"), 0755))
	// Loose file at the split level
	require.NoError(t, os.WriteFile(filepath.Join(split, "README.md"), nil, 0644))

	log := logs.NewTestingLog(t)
	expect := []string{
		filepath.Join(split, "SNGS-060", "img1", "000003.jpg"),
		filepath.Join(split, "SNGS-060", "img1", "000010.jpg"),
		filepath.Join(split, "SNGS-061", "img1", "000001.jpg"),
		filepath.Join(split, "SNGS-061", "img1", "000002.jpg"),
	}
	for i := 0; i < 3; i++ {
		files, err := ScanSplit(log, split)
		require.NoError(t, err)
		require.Equal(t, expect, files)
	}
}

func TestScanEmpty(t *testing.T) {
	split := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(split, "SEQ", "img1"), 0755))
	files, err := ScanSplit(logs.NewTestingLog(t), split)
	require.NoError(t, err)
	require.Empty(t, files)

	_, err = ScanSplit(logs.NewTestingLog(t), filepath.Join(split, "does-not-exist"))
	require.Error(t, err)
}

func TestListSequences(t *testing.T) {
	split := t.TempDir()
	writeFrames(t, split, "B", "1.jpg")
	writeFrames(t, split, "A", "1.jpg")
	writeAnnotations(t, split, "A", nil, nil)

	seqs, err := ListSequences(split)
	require.NoError(t, err)
	require.Len(t, seqs, 2)
	require.Equal(t, "A", seqs[0].Name)
	require.Equal(t, filepath.Join(split, "A", "A.json"), seqs[0].AnnotationFile)
	require.Equal(t, "B", seqs[1].Name)
	require.Equal(t, "", seqs[1].AnnotationFile)

	seq := SequenceOfFrame(filepath.Join(split, "A", "img1", "1.jpg"))
	require.Equal(t, "A", seq.Name)
	require.Equal(t, seqs[0].AnnotationFile, seq.AnnotationFile)
}

func TestGroupBySequence(t *testing.T) {
	frames := []string{
		"/d/B/img1/1.jpg",
		"/d/A/img1/1.jpg",
		"/d/B/img1/2.jpg",
		"/d/A/img1/2.jpg",
	}
	groups := groupBySequence(frames)
	require.Len(t, groups, 2)
	require.Equal(t, "A", groups[0].Sequence.Name)
	require.Equal(t, []string{"/d/A/img1/1.jpg", "/d/A/img1/2.jpg"}, groups[0].Frames)
	require.Equal(t, "B", groups[1].Sequence.Name)
	require.Equal(t, []string{"/d/B/img1/1.jpg", "/d/B/img1/2.jpg"}, groups[1].Frames)
}
