package dataset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cyclopcam/logs"
)

// Layout of a split directory:
//
//	split/SNGS-060/SNGS-060.json
//	split/SNGS-060/img1/000001.jpg
//	split/SNGS-060/img1/000002.jpg
//	split/SNGS-061/...
const (
	FrameDirName   = "img1"
	FrameExtension = ".jpg"
)

// SequenceDirectory is one capture sequence inside a split
type SequenceDirectory struct {
	Name           string // eg "SNGS-060"
	FrameDir       string // eg "split/SNGS-060/img1"
	AnnotationFile string // eg "split/SNGS-060/SNGS-060.json". Empty if the file does not exist.
}

// FrameImage is one frame file of a sequence
type FrameImage struct {
	FilePath string
	FileName string
}

// ListSequences returns the sequence directories of a split, sorted by name.
// Directories without a frame folder are included; their FrameDir is still populated.
func ListSequences(splitDir string) ([]SequenceDirectory, error) {
	entries, err := os.ReadDir(splitDir)
	if err != nil {
		return nil, err
	}
	seqs := []SequenceDirectory{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		seqs = append(seqs, sequenceFromDir(filepath.Join(splitDir, e.Name())))
	}
	sort.Slice(seqs, func(i, j int) bool {
		return seqs[i].Name < seqs[j].Name
	})
	return seqs, nil
}

func sequenceFromDir(seqDir string) SequenceDirectory {
	name := filepath.Base(seqDir)
	s := SequenceDirectory{
		Name:     name,
		FrameDir: filepath.Join(seqDir, FrameDirName),
	}
	jsonFile := filepath.Join(seqDir, name+".json")
	if st, err := os.Stat(jsonFile); err == nil && !st.IsDir() {
		s.AnnotationFile = jsonFile
	}
	return s
}

// Frames returns the frames of the sequence, sorted by file name.
// A sequence without a frame folder has no frames.
func (s *SequenceDirectory) Frames() ([]FrameImage, error) {
	entries, err := os.ReadDir(s.FrameDir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	frames := []FrameImage{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FrameExtension) {
			continue
		}
		frames = append(frames, FrameImage{
			FilePath: filepath.Join(s.FrameDir, e.Name()),
			FileName: e.Name(),
		})
	}
	sort.Slice(frames, func(i, j int) bool {
		return frames[i].FileName < frames[j].FileName
	})
	return frames, nil
}

// ScanSplit returns the frame paths of every sequence in the split.
// Sequences are visited in name order, and frames are in file name order within a sequence.
// An empty result is not an error.
func ScanSplit(log logs.Log, splitDir string) ([]string, error) {
	seqs, err := ListSequences(splitDir)
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, seq := range seqs {
		frames, err := seq.Frames()
		if err != nil {
			return nil, err
		}
		for _, f := range frames {
			files = append(files, f.FilePath)
		}
	}
	if len(files) == 0 {
		log.Warnf("No images found in %v", splitDir)
	} else {
		log.Infof("Found %v images in %v", len(files), splitDir)
	}
	return files, nil
}

// SequenceOfFrame returns the sequence directory that owns a frame path.
// The frame lives in <seq>/img1/<frame>, so the sequence is two levels up.
func SequenceOfFrame(framePath string) SequenceDirectory {
	return sequenceFromDir(filepath.Dir(filepath.Dir(framePath)))
}

// sequenceFrames is the set of frames belonging to one sequence
type sequenceFrames struct {
	Sequence SequenceDirectory
	Frames   []string
}

// groupBySequence groups frame paths by their owning sequence, in sequence name order.
// The frame order within each group is the order of the input.
func groupBySequence(frames []string) []sequenceFrames {
	index := map[string]int{}
	groups := []sequenceFrames{}
	for _, f := range frames {
		seqDir := filepath.Dir(filepath.Dir(f))
		i, ok := index[seqDir]
		if !ok {
			i = len(groups)
			index[seqDir] = i
			groups = append(groups, sequenceFrames{Sequence: sequenceFromDir(seqDir)})
		}
		groups[i].Frames = append(groups[i].Frames, f)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Sequence.Name < groups[j].Sequence.Name
	})
	return groups
}
