// Package export renders a finished canvas to a PDF for sharing outside
// the app.
package export

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// A4 printable area in mm, with a margin.
const (
	pageWidthMM  = 190.0
	pageHeightMM = 277.0
	marginMM     = 10.0
)

// PDF writes the completed strokes to path as a single-page PDF. Canvas
// coordinates scale uniformly to fit the printable area.
func PDF(path string, strokes []protocol.Stroke) error {
	if path == "" {
		return fmt.Errorf("empty output path")
	}

	scale := pageWidthMM / protocol.CanvasWidth
	if s := pageHeightMM / protocol.CanvasHeight; s < scale {
		scale = s
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetDrawColor(0, 0, 0)
	doc.SetLineWidth(0.5)

	for _, stroke := range strokes {
		for i := 1; i < len(stroke.Points); i++ {
			doc.Line(
				marginMM+stroke.Points[i-1].X*scale,
				marginMM+stroke.Points[i-1].Y*scale,
				marginMM+stroke.Points[i].X*scale,
				marginMM+stroke.Points[i].Y*scale,
			)
		}
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
