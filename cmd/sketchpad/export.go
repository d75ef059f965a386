package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmfenton/Sketchpad-sub000/internal/config"
	"github.com/dmfenton/Sketchpad-sub000/internal/export"
	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// exportCommand renders a saved canvas (a JSON stroke list) to PDF.
func exportCommand(_ *config.Config, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: sketchpad export <strokes.json> <out.pdf>")
	}
	in, out := args[0], args[1]

	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}

	var strokes []protocol.Stroke
	if err := json.Unmarshal(data, &strokes); err != nil {
		// Accept either a bare stroke array or an init-style snapshot.
		var snapshot struct {
			Strokes []protocol.Stroke `json:"strokes"`
		}
		if err2 := json.Unmarshal(data, &snapshot); err2 != nil {
			return fmt.Errorf("parse %s: %w", in, err)
		}
		strokes = snapshot.Strokes
	}

	if err := export.PDF(out, strokes); err != nil {
		return err
	}
	fmt.Printf("Exported %d strokes to %s\n", len(strokes), out)
	return nil
}
