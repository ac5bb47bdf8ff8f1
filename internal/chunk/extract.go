package chunk

import (
	"errors"
	"fmt"
	"io"
)

// LengthError reports a chunk whose derived length is not positive. A last
// chunk starting exactly at the declared total size is rejected as well, since
// it would emit an empty row.
type LengthError struct {
	Name   string
	Offset uint64
	// End is the next chunk's offset, or the declared total size for the last chunk.
	End  uint64
	Last bool
}

func (e *LengthError) Error() string {
	if e.Last {
		return fmt.Sprintf("chunk %q: declared total size 0x%x does not exceed chunk offset 0x%x", e.Name, e.End, e.Offset)
	}
	return fmt.Sprintf("chunk %q: next chunk offset 0x%x does not exceed chunk offset 0x%x", e.Name, e.End, e.Offset)
}

// ShortReadError reports a chunk that runs past the end of the binary image.
type ShortReadError struct {
	Name   string
	Offset uint64
	Want   uint64
	Got    int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("chunk %q: short read at offset 0x%x: want %d bytes, got %d", e.Name, e.Offset, e.Want, e.Got)
}

// Lengths fills in the Length of every chunk from the gaps between offsets
// and the declared total size.
func Lengths(chunks []Chunk, totalSize uint64) error {
	for i := range chunks {
		c := &chunks[i]
		last := i == len(chunks)-1
		end := totalSize
		if !last {
			end = chunks[i+1].Offset
		}
		if end <= c.Offset {
			return &LengthError{Name: c.Name, Offset: c.Offset, End: end, Last: last}
		}
		c.Length = end - c.Offset
	}
	return nil
}

// Image is a binary image of known size, such as *bytes.Reader or *io.SectionReader.
type Image interface {
	io.ReaderAt
	Size() int64
}

// Extract computes chunk lengths and reads each chunk's bytes from img.
// Ranges past the end of img fail with ShortReadError before any allocation.
func Extract(chunks []Chunk, img Image, totalSize uint64) error {
	if err := Lengths(chunks, totalSize); err != nil {
		return err
	}
	for i := range chunks {
		if err := read(&chunks[i], img); err != nil {
			return err
		}
	}
	return nil
}

func read(c *Chunk, img Image) error {
	size := uint64(max(img.Size(), 0))
	var avail uint64
	if c.Offset < size {
		avail = size - c.Offset
	}
	if c.Length > avail {
		return &ShortReadError{Name: c.Name, Offset: c.Offset, Want: c.Length, Got: int(avail)}
	}

	buf := make([]byte, c.Length)
	n, err := img.ReadAt(buf, int64(c.Offset))
	if uint64(n) < c.Length {
		if err == nil || errors.Is(err, io.EOF) {
			return &ShortReadError{Name: c.Name, Offset: c.Offset, Want: c.Length, Got: n}
		}
		return fmt.Errorf("read chunk %q: %w", c.Name, err)
	}
	c.Data = buf
	return nil
}
