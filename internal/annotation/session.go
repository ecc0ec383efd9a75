package annotation

import (
	"fmt"
	"image"
)

// DefaultWindowSide is the side length of the box drawn around a click, matching the
// default ROI crop size.
const DefaultWindowSide = 48

// Mode selects which list a click is recorded in
type Mode int

const (
	Positive Mode = iota
	Negative
)

func (m Mode) String() string {
	if m == Negative {
		return "negative"
	}
	return "positive"
}

// Point is a pixel location [x, y] on a tile image
type Point [2]int

// X returns the column
func (p Point) X() int { return p[0] }

// Y returns the row
func (p Point) Y() int { return p[1] }

// Key renders p the way ROI lookups are keyed: "(x, y)"
func (p Point) Key() string {
	return fmt.Sprintf("(%d, %d)", p[0], p[1])
}

// Record holds the labeled points of one image
type Record struct {
	ImgFile        string  `json:"img_file"`
	PositivePoints []Point `json:"positive_points"`
	NegativePoints []Point `json:"negative_points"`
}

// Session is the labeling state of one batch. The mode carries over from one image
// to the next; the point lists are reset by Finish.
type Session struct {
	mode       Mode
	windowSide int
	image      string
	positive   []Point
	negative   []Point
}

// NewSession starts a batch in positive mode
func NewSession(windowSide int) *Session {
	if windowSide <= 0 {
		windowSide = DefaultWindowSide
	}
	return &Session{windowSide: windowSide}
}

// Begin starts labeling img
func (s *Session) Begin(img string) {
	s.image = img
	s.positive = nil
	s.negative = nil
}

// Image returns the file being labeled
func (s *Session) Image() string {
	return s.image
}

// Mode returns the current click mode
func (s *Session) Mode() Mode {
	return s.mode
}

// SetMode switches the list the next clicks go to
func (s *Session) SetMode(m Mode) {
	s.mode = m
}

// Click records (x, y) under the current mode and returns the box to highlight.
func (s *Session) Click(x, y int) image.Rectangle {
	p := Point{x, y}
	if s.mode == Positive {
		s.positive = append(s.positive, p)
	} else {
		s.negative = append(s.negative, p)
	}
	return s.Box(p)
}

// Undo removes the last point of the current mode. It reports false when that list
// is empty, even if the other one is not.
func (s *Session) Undo() (Point, bool) {
	list := &s.positive
	if s.mode == Negative {
		list = &s.negative
	}
	if len(*list) == 0 {
		return Point{}, false
	}
	p := (*list)[len(*list)-1]
	*list = (*list)[:len(*list)-1]
	return p, true
}

// Box is the highlight rectangle centered on p
func (s *Session) Box(p Point) image.Rectangle {
	half := s.windowSide / 2
	return image.Rect(p[0]-half, p[1]-half, p[0]+half, p[1]+half)
}

// Finish closes the current image and returns its record
func (s *Session) Finish() Record {
	rec := Record{
		ImgFile:        s.image,
		PositivePoints: s.positive,
		NegativePoints: s.negative,
	}
	if rec.PositivePoints == nil {
		rec.PositivePoints = []Point{}
	}
	if rec.NegativePoints == nil {
		rec.NegativePoints = []Point{}
	}
	s.Begin("")
	return rec
}
