package emit

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"jitgen/internal/chunk"
)

// Record is one row read back from an emitted table.
type Record struct {
	Name   string
	Length int
	Abs    int
	Rel    int
	Data   []byte
}

var rowRe = regexp.MustCompile(`^\s*\{\s*(\S+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*(-?\d+)\s*,\s*"((?:\\x[0-9a-fA-F]{2})*)"\s*\},?\s*$`)

// Unescape decodes a run of \xNN escapes.
func Unescape(s string) ([]byte, error) {
	if len(s)%4 != 0 {
		return nil, fmt.Errorf("unescape: length %d is not a multiple of 4", len(s))
	}
	out := make([]byte, 0, len(s)/4)
	for i := 0; i < len(s); i += 4 {
		if s[i] != '\\' || s[i+1] != 'x' {
			return nil, fmt.Errorf("unescape: bad escape %q at %d", s[i:i+4], i)
		}
		v, err := strconv.ParseUint(s[i+2:i+4], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("unescape: %w", err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

// ReadTable parses the rows of a table produced by Write. Lines that are not
// rows (include, declaration, braces) are ignored.
func ReadTable(r io.Reader) ([]Record, error) {
	var recs []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if !strings.HasPrefix(strings.TrimSpace(text), "{") {
			continue
		}
		m := rowRe.FindStringSubmatch(text)
		if m == nil {
			return nil, fmt.Errorf("line %d: malformed row", line)
		}
		rec := Record{Name: m[1]}
		for i, dst := range []*int{&rec.Length, &rec.Abs, &rec.Rel} {
			v, err := strconv.Atoi(m[i+2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			*dst = v
		}
		data, err := Unescape(m[5])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec.Data = data
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return recs, nil
}

// Verify checks that recs describe chunks exactly: same order, fields and payload.
func Verify(recs []Record, chunks []chunk.Chunk) error {
	if len(recs) != len(chunks) {
		return fmt.Errorf("verify: %d rows emitted, %d chunks", len(recs), len(chunks))
	}
	for i, rec := range recs {
		c := &chunks[i]
		switch {
		case rec.Name != c.Name:
			return fmt.Errorf("verify: row %d: name %q, want %q", i, rec.Name, c.Name)
		case uint64(rec.Length) != c.Length:
			return fmt.Errorf("verify: %s: length %d, want %d", c.Name, rec.Length, c.Length)
		case rec.Abs != c.Abs.Value() || rec.Rel != c.Rel.Value():
			return fmt.Errorf("verify: %s: markers %d/%d, want %d/%d", c.Name, rec.Abs, rec.Rel, c.Abs.Value(), c.Rel.Value())
		case !bytes.Equal(rec.Data, c.Data):
			return fmt.Errorf("verify: %s: payload differs", c.Name)
		}
	}
	return nil
}
