package main

import (
	"log/slog"
	"os"

	"jitgen/internal/jitgen/cmd"
	"jitgen/internal/jitgen/log"
)

func main() {
	defer log.RecoverPanic("main", func() {
		slog.Error("Application terminated due to unhandled panic")
		os.Exit(3)
	})

	cmd.Execute()
}
