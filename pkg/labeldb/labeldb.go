// Package labeldb stores a label set in an SQLite database, so that it can be
// queried with SQL.
package labeldb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cyclopcam/dbh"
	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/seqlabel/pkg/dataset"
	"gorm.io/gorm"
)

// Number of rows per INSERT statement
const insertBatchSize = 200

type LabelDB struct {
	Log logs.Log
	DB  *gorm.DB
}

// ClassCount is the number of boxes of one class
type ClassCount struct {
	ClassID int64  `json:"classID"`
	Name    string `json:"name"`
	Boxes   int64  `json:"boxes"`
}

// Open or create a label database
func Open(log logs.Log, dbFilename string) (*LabelDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbFilename), 0777); err != nil {
		return nil, err
	}
	db, err := dbh.OpenDB(log, dbh.MakeSqliteConfig(dbFilename), Migrations(log), 0)
	if err != nil {
		return nil, fmt.Errorf("Failed to open database %v: %w", dbFilename, err)
	}
	return &LabelDB{
		Log: log,
		DB:  db,
	}, nil
}

func (l *LabelDB) Close() error {
	sqlDB, err := l.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Import replaces the entire contents of the database with the given labels.
func (l *LabelDB) Import(labels []*dataset.LabelRecord, classes *dataset.ClassMap) error {
	nBoxes := 0
	err := l.DB.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"box", "frame", "sequence", "class"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}

		// Class IDs are ours, and zero is a valid ID, so we don't let gorm treat them as generated keys
		for _, id := range classes.IDs() {
			if err := tx.Exec("INSERT INTO class (id, name) VALUES (?, ?)", id, classes.Name(id)).Error; err != nil {
				return err
			}
		}

		sequenceIDs := map[string]int64{}
		for _, label := range labels {
			name := label.Sequence()
			seqID, ok := sequenceIDs[name]
			if !ok {
				seq := Sequence{Name: name}
				if err := tx.Create(&seq).Error; err != nil {
					return err
				}
				seqID = seq.ID
				sequenceIDs[name] = seqID
			}
			frame := Frame{
				SequenceID: seqID,
				ImageFile:  label.ImageFile,
				Width:      label.Width,
				Height:     label.Height,
			}
			if err := tx.Create(&frame).Error; err != nil {
				return err
			}
			if len(label.Boxes) == 0 {
				continue
			}
			boxes := make([]Box, len(label.Boxes))
			for i, b := range label.Boxes {
				boxes[i] = Box{
					FrameID: frame.ID,
					ClassID: int64(label.ClassIDs[i]),
					XCenter: b.XCenter,
					YCenter: b.YCenter,
					W:       b.W,
					H:       b.H,
				}
			}
			if err := tx.CreateInBatches(&boxes, insertBatchSize).Error; err != nil {
				return err
			}
			nBoxes += len(boxes)
		}

		return tx.Create(&Import{
			CreatedAt: dbh.MakeIntTime(time.Now()),
			Frames:    len(labels),
			Boxes:     nBoxes,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("Failed to import labels: %w", err)
	}
	l.Log.Infof("Imported %v frames and %v boxes", len(labels), nBoxes)
	return nil
}

// ClassCounts returns the number of boxes of each class, ordered by class ID.
// Classes with no boxes are included, with a count of zero.
func (l *LabelDB) ClassCounts() ([]ClassCount, error) {
	counts := []ClassCount{}
	err := l.DB.Raw(`
		SELECT class.id AS class_id, class.name AS name, COUNT(box.id) AS boxes
		FROM class LEFT JOIN box ON box.class_id = class.id
		GROUP BY class.id, class.name
		ORDER BY class.id`).Scan(&counts).Error
	return counts, err
}

// FramesWithClass returns the frames that contain at least one box of the given class,
// ordered by image file.
func (l *LabelDB) FramesWithClass(classID int) ([]Frame, error) {
	frames := []Frame{}
	err := l.DB.Where("id IN (SELECT frame_id FROM box WHERE class_id = ?)", classID).Order("image_file").Find(&frames).Error
	return frames, err
}

// Sequences returns all sequences, ordered by name
func (l *LabelDB) Sequences() ([]Sequence, error) {
	seqs := []Sequence{}
	err := l.DB.Order("name").Find(&seqs).Error
	return seqs, err
}

// LastImport returns the most recent import, or nil if there has never been one
func (l *LabelDB) LastImport() (*Import, error) {
	imports := []Import{}
	if err := l.DB.Order("id DESC").Limit(1).Find(&imports).Error; err != nil {
		return nil, err
	}
	if len(imports) == 0 {
		return nil, nil
	}
	return &imports[0], nil
}
