package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cyclopcam/logs"
)

// frameOutcome is what happened to a single frame during a build
type frameOutcome int

const (
	frameFound frameOutcome = iota
	frameMissing
	frameEmpty
)

// BuildLabels joins the frames against their sequence annotation files, and returns
// the normalized labels along with the tallies of what was found.
// Problems with individual frames or sequences are recorded in the report, and
// never abort the build.
func BuildLabels(log logs.Log, classes *ClassMap, frames []string) *Report {
	report := &Report{
		Labels:   []*LabelRecord{},
		Messages: []string{},
	}
	for _, group := range groupBySequence(frames) {
		res := buildSequence(classes, group)
		log.Debugf("Sequence %v: %v (%v)", res.Name, res.Kind, res.Counts)
		switch res.Kind {
		case ErrorKindMissingAnnotation:
			report.Messages = append(report.Messages, fmt.Sprintf("Missing JSON file for sequence %v", res.Name))
		case ErrorKindSequenceCorrupt:
			report.Messages = append(report.Messages, fmt.Sprintf("Error processing %v: %v", res.Name, res.Err))
		}
		report.Counts.add(res.Counts)
		report.Labels = append(report.Labels, res.Labels...)
		// Don't hold the labels twice
		res.Labels = nil
		report.Sequences = append(report.Sequences, res)
	}
	report.Counts.Total = len(frames)

	if len(report.Messages) != 0 {
		log.Infof("%v", strings.Join(report.Messages, "\n"))
	}
	if report.Counts.Found == 0 {
		log.Warnf("No labels found in %v frames", len(frames))
	}
	log.Infof("Successfully loaded %v", report.Counts)
	return report
}

// buildSequence processes all frames of one sequence.
// If the annotation file turns out to be unusable partway through, the sequence is
// reported as corrupt. The frames before the failure keep their labels and counts,
// and the remaining frames are not processed.
func buildSequence(classes *ClassMap, group sequenceFrames) SequenceResult {
	res := SequenceResult{
		Name: group.Sequence.Name,
	}
	if group.Sequence.AnnotationFile == "" {
		res.Kind = ErrorKindMissingAnnotation
		res.Counts.Missing = len(group.Frames)
		return res
	}

	corrupt := func(err error) SequenceResult {
		res.Kind = ErrorKindSequenceCorrupt
		res.Err = err
		res.Counts.Corrupt = 1
		return res
	}

	anns, err := LoadAnnotations(group.Sequence.AnnotationFile)
	if err != nil {
		return corrupt(err)
	}

	for _, frame := range group.Frames {
		label, outcome, err := buildFrameLabel(classes, anns, frame)
		if err != nil {
			return corrupt(fmt.Errorf("%v: %w", filepath.Base(frame), err))
		}
		switch outcome {
		case frameFound:
			res.Labels = append(res.Labels, label)
			res.Counts.Found++
		case frameMissing:
			res.Counts.Missing++
		case frameEmpty:
			res.Counts.Empty++
		}
	}
	return res
}

// buildFrameLabel produces the label of a single frame.
// An error means the annotation file is unusable (eg missing or unknown class, or bad image dimensions).
func buildFrameLabel(classes *ClassMap, anns *SequenceAnnotations, framePath string) (*LabelRecord, frameOutcome, error) {
	info := anns.FindImage(filepath.Base(framePath))
	if info == nil {
		return nil, frameMissing, nil
	}

	raw := anns.Annotations(info.ImageID)
	if len(raw) == 0 {
		return nil, frameEmpty, nil
	}

	if info.Width <= 0 || info.Height <= 0 {
		return nil, 0, fmt.Errorf("Image %v has invalid dimensions %v x %v", info.ImageID, info.Width, info.Height)
	}

	label := &LabelRecord{
		ImageFile: framePath,
		Height:    info.Height,
		Width:     info.Width,
	}
	for _, ann := range raw {
		if ann.CategoryID == nil {
			return nil, 0, fmt.Errorf("Annotation of image %v has no category_id", info.ImageID)
		}
		classID := *ann.CategoryID
		if _, err := classes.Lookup(classID); err != nil {
			return nil, 0, err
		}
		if ann.BBoxImage.IsEmpty() {
			continue
		}
		format := InferBoxFormat(ann.BBoxImage)
		box := NormalizeBox(ann.BBoxImage, format, info.Width, info.Height)
		if !box.Valid() || !box.IsFinite() {
			continue
		}
		label.ClassIDs = append(label.ClassIDs, classID)
		label.Boxes = append(label.Boxes, box)
	}

	if len(label.Boxes) == 0 {
		return nil, frameEmpty, nil
	}
	return label, frameFound, nil
}
