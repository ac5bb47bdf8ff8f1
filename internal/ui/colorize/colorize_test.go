package colorize

import (
	"strings"
	"testing"
)

const table = `#include "chunks.h"

jit_chunk_t chunk_table[] = {
  { ins_add     ,  4, -1, -1, "\x58\x01\x04\x24" },
};
`

func TestColorizeSourceDisabled(t *testing.T) {
	t.Setenv("JITGEN_NO_COLOR", "1")
	got, err := ColorizeSource(table)
	if err != nil {
		t.Fatalf("ColorizeSource() error = %v", err)
	}
	if got != table {
		t.Errorf("ColorizeSource() modified source with colors disabled")
	}
}

func TestColorizeSource(t *testing.T) {
	t.Setenv("JITGEN_NO_COLOR", "")
	got, err := ColorizeSource(table)
	if err != nil {
		t.Fatalf("ColorizeSource() error = %v", err)
	}
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("no ANSI sequences in highlighted output")
	}
	if !strings.Contains(got, "chunk_table") || !strings.Contains(got, "ins_add") {
		t.Errorf("highlighted output lost identifiers:\n%q", got)
	}
}
