// cutplan - cutting plans for sheet materials
//
// Packs the rectangular pieces of a job onto stock sheets and writes the
// plan as a summary, PNG images, a PDF document, piece labels and DXF files.
//
// Build:
//   go build -o cutplan ./cmd/cutplan
//
// Usage:
//   cutplan import pieces.csv --sheet 275x185
//   cutplan plan pieces.yaml --pdf plan.pdf

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/piwi3910/cutplan/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version, commit, date)
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
