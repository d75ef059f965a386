package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

func TestPDFWritesDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "canvas.pdf")
	strokes := []protocol.Stroke{
		{ID: "s1", Type: "pen", Points: []protocol.Point{
			{X: 100, Y: 100}, {X: 500, Y: 500}, {X: 900, Y: 100},
		}},
		{ID: "s2", Type: "pen", Points: []protocol.Point{
			{X: 0, Y: 0}, {X: 1000, Y: 1000},
		}},
	}

	require.NoError(t, PDF(path, strokes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.True(t, len(data) > 4 && string(data[:4]) == "%PDF", "output must be a PDF document")
}

func TestPDFEmptyStrokesStillProducesPage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blank.pdf")
	require.NoError(t, PDF(path, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, len(data) > 4 && string(data[:4]) == "%PDF")
}

func TestPDFRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	require.Error(t, PDF("", nil))
}
