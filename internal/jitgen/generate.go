// Package jitgen runs the map -> chunks -> table pipeline.
package jitgen

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"jitgen/internal/chunk"
	"jitgen/internal/emit"
	"jitgen/internal/mapfile"
)

// Request names the three files of a run and the emitter options.
type Request struct {
	MapPath string
	BinPath string
	OutPath string
	Emit    emit.Options
	// Verify re-reads the emitted rows and compares them to the chunks.
	Verify bool
}

// Result is what a successful run produced.
type Result struct {
	Chunks    []chunk.Chunk
	TotalSize uint64
	HasHeader bool
	Source    []byte
}

// Generate runs the whole pipeline. The output path is only replaced when
// every stage succeeds.
func Generate(req Request, logger *log.Logger) (*Result, error) {
	mf, err := os.Open(req.MapPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open input files: %w", err)
	}
	defer mf.Close()

	bin, err := os.Open(req.BinPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open input files: %w", err)
	}
	defer bin.Close()

	fi, err := bin.Stat()
	if err != nil {
		return nil, fmt.Errorf("unable to open input files: %w", err)
	}
	img := io.NewSectionReader(bin, 0, fi.Size())

	out, err := emit.Create(req.OutPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open output file: %w", err)
	}
	defer out.Close()

	m, err := mapfile.ParseFrom(mf, req.MapPath)
	if err != nil {
		return nil, err
	}
	if !m.HasHeader {
		logger.Warn("map has no column header, table will be empty", "map", req.MapPath)
	}
	if !m.HasLength {
		logger.Warn("map has no length line, total size is 0", "map", req.MapPath)
	}
	logger.Debug("parsed map", "rows", len(m.Entries), "total", fmt.Sprintf("0x%x", m.TotalSize))

	chunks := make([]chunk.Chunk, 0, len(m.Entries))
	for _, e := range m.Entries {
		chunks = append(chunks, chunk.New(e.Offset, e.Name))
	}

	if err := chunk.Extract(chunks, img, m.TotalSize); err != nil {
		return nil, fmt.Errorf("%s: %w", req.BinPath, err)
	}
	if err := chunk.AnalyseAll(chunks); err != nil {
		return nil, err
	}
	for i := range chunks {
		c := &chunks[i]
		logger.Debug("chunk", "name", c.Name, "offset", c.Offset, "length", c.Length, "marker", c.Kind(), "abs", c.Abs, "rel", c.Rel)
	}

	var src bytes.Buffer
	if err := emit.Write(&src, chunks, req.Emit); err != nil {
		return nil, err
	}
	if req.Verify {
		recs, err := emit.ReadTable(bytes.NewReader(src.Bytes()))
		if err != nil {
			return nil, err
		}
		if err := emit.Verify(recs, chunks); err != nil {
			return nil, err
		}
		logger.Debug("verified table", "rows", len(recs))
	}

	if _, err := out.Write(src.Bytes()); err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}
	if err := out.Commit(); err != nil {
		return nil, err
	}
	logger.Info("wrote chunk table", "path", req.OutPath, "chunks", len(chunks))

	return &Result{
		Chunks:    chunks,
		TotalSize: m.TotalSize,
		HasHeader: m.HasHeader,
		Source:    src.Bytes(),
	}, nil
}
