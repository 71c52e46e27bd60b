package main

import (
	"log/slog"
	"os"

	"github.com/hitoshi/exercisetracker/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("exercisetracker exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
