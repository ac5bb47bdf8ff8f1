package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jitgen/internal/chunk"
)

func writeInputs(t *testing.T) (dir, mapPath, binPath string) {
	t.Helper()
	dir = t.TempDir()
	mapPath = filepath.Join(dir, "chunks.map")
	binPath = filepath.Join(dir, "chunks.bin")
	mapText := "Real Virtual Name\n0 0 ins_call\n6 6 ins_jmp\nlength: b\n"
	bin := []byte{0xe8, 0x39, 0xcc, 0xbb, 0xaa, 0x50, 0xe9, 0x1f, 0xcc, 0xbb, 0xaa}
	if err := os.WriteFile(mapPath, []byte(mapText), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(binPath, bin, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, mapPath, binPath
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("JITGEN_NO_COLOR", "1")
	t.Setenv("JITGEN_LOG_LEVEL", "error")
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUsageExitsZero(t *testing.T) {
	tests := [][]string{
		{},
		{"only.map"},
		{"a.map", "b.bin"},
		{"a.map", "b.bin", "c.cpp", "extra"},
	}
	for _, args := range tests {
		t.Run(fmt.Sprintf("%d args", len(args)), func(t *testing.T) {
			out, err := runCmd(t, args...)
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if ExitCode(err) != ExitOK {
				t.Errorf("exit code = %d, want 0", ExitCode(err))
			}
			if !strings.HasPrefix(out, "usage: ") || !strings.Contains(out, "map bin outpath") {
				t.Errorf("output = %q, want usage line", out)
			}
		})
	}
}

func TestGenerateCommand(t *testing.T) {
	dir, mapPath, binPath := writeInputs(t)
	outPath := filepath.Join(dir, "chunks.cpp")

	out, err := runCmd(t, "--namespace", "cj", "--verify", "-p", "-s", mapPath, binPath, outPath)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	written, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"namespace cj {",
		`{ ins_call    ,  6, -1,  1, "\xe8\x39\xcc\xbb\xaa\x50" },`,
		`{ ins_jmp     ,  5, -1,  1, "\xe9\x1f\xcc\xbb\xaa" },`,
	} {
		if !strings.Contains(string(written), want) {
			t.Errorf("table missing %q:\n%s", want, written)
		}
	}

	if !strings.HasPrefix(out, string(written)) {
		t.Errorf("--print did not echo the table first:\n%s", out)
	}
	if !strings.Contains(out, "| ins_call | 0x0 | 6 | rel | 1 |") {
		t.Errorf("summary missing ins_call row:\n%s", out)
	}
}

func TestConfigFile(t *testing.T) {
	dir, mapPath, binPath := writeInputs(t)
	outPath := filepath.Join(dir, "chunks.cpp")
	cfgPath := filepath.Join(dir, "jitgen.json")
	cfg := `{"header": "libcj/chunks.h", "table": "cj_table", "namespace": "cj"}`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCmd(t, "--config", cfgPath, "--table", "override", mapPath, binPath, outPath); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	written, _ := os.ReadFile(outPath)
	for _, want := range []string{`#include "libcj/chunks.h"`, "jit_chunk_t override[] = {", "namespace cj {"} {
		if !strings.Contains(string(written), want) {
			t.Errorf("table missing %q:\n%s", want, written)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	dir, mapPath, binPath := writeInputs(t)
	outPath := filepath.Join(dir, "chunks.cpp")

	tests := []struct {
		name string
		args []string
	}{
		{"missing map", []string{filepath.Join(dir, "nope.map"), binPath, outPath}},
		{"missing binary", []string{mapPath, filepath.Join(dir, "nope.bin"), outPath}},
		{"unopenable output", []string{mapPath, binPath, filepath.Join(dir, "no", "out.cpp")}},
		{"bad config", []string{"--config", filepath.Join(dir, "nope.json"), mapPath, binPath, outPath}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCmd(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if ExitCode(err) != ExitFailure {
				t.Errorf("exit code = %d, want %d", ExitCode(err), ExitFailure)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	conflict := fmt.Errorf("classify: %w", &chunk.MarkerConflictError{Name: "x", Abs: 0, Rel: 2})
	if got := ExitCode(conflict); got != ExitConflict {
		t.Errorf("ExitCode(conflict) = %d, want %d", got, ExitConflict)
	}
	if got := ExitCode(nil); got != ExitOK {
		t.Errorf("ExitCode(nil) = %d", got)
	}
	if got := ExitCode(os.ErrNotExist); got != ExitFailure {
		t.Errorf("ExitCode(not exist) = %d", got)
	}
}

func TestInspectCommand(t *testing.T) {
	dir, mapPath, binPath := writeInputs(t)
	outPath := filepath.Join(dir, "chunks.cpp")
	if _, err := runCmd(t, mapPath, binPath, outPath); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, "inspect", outPath)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"**2** chunks", "| ins_jmp | 0x6 | 5 | rel | 1 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := runCmd(t, "schema")
	if err != nil {
		t.Fatalf("schema error = %v", err)
	}
	for _, want := range []string{`"namespace"`, `"header"`, `"verify"`} {
		if !strings.Contains(out, want) {
			t.Errorf("schema missing %s", want)
		}
	}
}

func TestMapNamedLikeSubcommand(t *testing.T) {
	for _, name := range []string{"inspect", "schema"} {
		t.Run(name, func(t *testing.T) {
			dir, mapPath, binPath := writeInputs(t)
			mapText, err := os.ReadFile(mapPath)
			if err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(dir, name), mapText, 0o644); err != nil {
				t.Fatal(err)
			}
			t.Chdir(dir)

			if _, err := runCmd(t, name, filepath.Base(binPath), "out.cpp", "--namespace", "cj"); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			written, err := os.ReadFile(filepath.Join(dir, "out.cpp"))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(written), "namespace cj {") || !strings.Contains(string(written), "ins_jmp") {
				t.Errorf("unexpected table:\n%s", written)
			}
		})
	}
}
