package labeldb

import "github.com/cyclopcam/dbh"

// BaseModel is our base class for a GORM model.
// The default GORM Model uses int, but we prefer int64
type BaseModel struct {
	ID int64 `gorm:"primaryKey" json:"id"`
}

type Sequence struct {
	BaseModel
	Name string `json:"name"`
}

func (Sequence) TableName() string {
	return "sequence"
}

type Frame struct {
	BaseModel
	SequenceID int64  `json:"sequenceID"`
	ImageFile  string `json:"imageFile"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

func (Frame) TableName() string {
	return "frame"
}

// Box is a single object. Coordinates are normalized to [0,1].
type Box struct {
	BaseModel
	FrameID int64   `json:"frameID"`
	ClassID int64   `json:"classID"`
	XCenter float32 `json:"xCenter"`
	YCenter float32 `json:"yCenter"`
	W       float32 `json:"w"`
	H       float32 `json:"h"`
}

func (Box) TableName() string {
	return "box"
}

// Import records each time the label set was (re)imported
type Import struct {
	BaseModel
	CreatedAt dbh.IntTime `json:"createdAt"`
	Frames    int         `json:"frames"`
	Boxes     int         `json:"boxes"`
}

func (Import) TableName() string {
	return "import"
}
