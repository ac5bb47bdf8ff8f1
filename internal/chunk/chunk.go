// Package chunk models the named byte ranges cut from a flat binary image,
// and finds the patch markers inside them.
package chunk

import (
	"bytes"
	"fmt"
)

// Marker byte patterns. RelMarker is the trailing half of AbsMarker.
var (
	AbsMarker = []byte{0xDD, 0xCC, 0xBB, 0xAA}
	RelMarker = []byte{0xBB, 0xAA}
)

// NotFound is the table value for a marker that is absent.
const NotFound = -1

// relOperandBack converts the end of the rel-marker bytes into the start of
// the relative operand.
const relOperandBack = 2

// Pos is an optional byte offset within a chunk.
type Pos struct {
	Off   int
	Valid bool
}

// At returns a valid position.
func At(off int) Pos { return Pos{Off: off, Valid: true} }

// Value returns the offset, or NotFound.
func (p Pos) Value() int {
	if !p.Valid {
		return NotFound
	}
	return p.Off
}

func (p Pos) String() string {
	if !p.Valid {
		return "none"
	}
	return fmt.Sprintf("%d", p.Off)
}

// Kind says which marker, if any, a chunk carries.
type Kind int

const (
	KindNone Kind = iota
	KindAbs
	KindRel
)

func (k Kind) String() string {
	switch k {
	case KindAbs:
		return "abs"
	case KindRel:
		return "rel"
	default:
		return "none"
	}
}

// Chunk is one named, contiguous range of the binary image.
type Chunk struct {
	Offset uint64
	Length uint64
	Name   string
	Data   []byte
	Abs    Pos
	Rel    Pos
}

// New returns a chunk with only its position and name known.
func New(offset uint64, name string) Chunk {
	return Chunk{Offset: offset, Name: name}
}

// Kind reports the classification of c.
func (c *Chunk) Kind() Kind {
	switch {
	case c.Abs.Valid:
		return KindAbs
	case c.Rel.Valid:
		return KindRel
	default:
		return KindNone
	}
}

// MarkerConflictError is returned when a chunk ends up with both markers.
type MarkerConflictError struct {
	Name string
	Abs  int
	Rel  int
}

func (e *MarkerConflictError) Error() string {
	return fmt.Sprintf("chunk %q: both abs marker (at %d) and rel marker (at %d) found", e.Name, e.Abs, e.Rel)
}

// Classify searches data for the markers. The 4-byte marker wins; a 2-byte
// match in the first two bytes is discarded.
func Classify(data []byte) (abs, rel Pos) {
	if p := bytes.Index(data, AbsMarker); p >= 0 {
		return At(p), Pos{}
	}
	if p := bytes.Index(data, RelMarker); p >= relOperandBack {
		return Pos{}, At(p - relOperandBack)
	}
	return Pos{}, Pos{}
}

// Analyse classifies c in place.
func (c *Chunk) Analyse() error {
	c.Abs, c.Rel = Classify(c.Data)
	return c.check()
}

func (c *Chunk) check() error {
	if c.Abs.Valid && c.Rel.Valid {
		return &MarkerConflictError{Name: c.Name, Abs: c.Abs.Off, Rel: c.Rel.Off}
	}
	return nil
}

// AnalyseAll classifies every chunk, stopping at the first conflict.
func AnalyseAll(chunks []Chunk) error {
	for i := range chunks {
		if err := chunks[i].Analyse(); err != nil {
			return err
		}
	}
	return nil
}
