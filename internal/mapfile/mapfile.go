// Package mapfile reads linker symbol maps of the form produced by flat-binary
// assemblers: a preamble, a "Real Virtual Name" column header, rows of
// hex offsets followed by a label, and a "length:" line giving the image size.
package mapfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Entry is one recorded row of the symbol table.
type Entry struct {
	Offset uint64
	Name   string
	Line   int // 1-based source line
}

// Map is the parsed content of a symbol map.
type Map struct {
	Entries   []Entry
	TotalSize uint64
	// HasHeader reports whether the column header was seen.
	HasHeader bool
	// HasLength reports whether a length line was seen.
	HasLength bool
}

// ParseError describes a token that could not be read as a hex integer.
type ParseError struct {
	Path  string
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	path := e.Path
	if path == "" {
		path = "<map>"
	}
	return fmt.Sprintf("%s:%d: invalid hex value %q: %v", path, e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var header = [3]string{"Real", "Virtual", "Name"}

const lengthToken = "length:"

// Parse reads a symbol map from r.
func Parse(r io.Reader) (*Map, error) {
	return ParseFrom(r, "")
}

// ParseFrom reads a symbol map from r; path is only used in error messages.
func ParseFrom(r io.Reader, path string) (*Map, error) {
	m := &Map{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		tokens := strings.Fields(sc.Text())
		if len(tokens) == 0 {
			continue
		}

		if isHeader(tokens) {
			m.HasHeader = true
			continue
		}

		if tokens[0] == lengthToken {
			if len(tokens) < 2 {
				return nil, &ParseError{Path: path, Line: lineNo, Token: "", Err: strconv.ErrSyntax}
			}
			size, err := parseHex(tokens[1])
			if err != nil {
				return nil, &ParseError{Path: path, Line: lineNo, Token: tokens[1], Err: err}
			}
			// Last occurrence wins.
			m.TotalSize = size
			m.HasLength = true
			continue
		}

		if !m.HasHeader || len(tokens) != 3 {
			continue
		}

		// Virtual column is not used.
		off, err := parseHex(tokens[0])
		if err != nil {
			return nil, &ParseError{Path: path, Line: lineNo, Token: tokens[0], Err: err}
		}
		m.Entries = append(m.Entries, Entry{Offset: off, Name: tokens[2], Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	return m, nil
}

func isHeader(tokens []string) bool {
	if len(tokens) != len(header) {
		return false
	}
	for i, t := range tokens {
		if t != header[i] {
			return false
		}
	}
	return true
}

// parseHex accepts an optional 0x prefix, like Python's int(s, 16).
func parseHex(s string) (uint64, error) {
	t := s
	if len(t) > 2 && (t[:2] == "0x" || t[:2] == "0X") {
		t = t[2:]
	}
	return strconv.ParseUint(t, 16, 64)
}
