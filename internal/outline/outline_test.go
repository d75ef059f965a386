package outline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func linePoints(n int) []Point {
	pts := make([]Point, n)
	for i := range pts {
		pts[i] = Point{X: float64(i), Y: 0}
	}
	return pts
}

func TestCache_BodyStableBetweenCommits(t *testing.T) {
	t.Parallel()

	c := NewCache(WithTailLen(5), WithTailOverlap(2), WithCommitThreshold(4))

	var bodies []string
	for n := 1; n <= 30; n++ {
		frame := c.Update(linePoints(n), 4)
		bodies = append(bodies, frame.Body)
	}

	// Count distinct consecutive body values: each commit changes the body
	// exactly once, and nothing changes it in between.
	changes := 0
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[i-1] {
			changes++
		}
	}
	// bodyEnd = n-5; commits land when bodyEnd advances by 4: at
	// bodyEnd 4, 8, 12, 16, 20, 24 (n = 9, 13, 17, 21, 25, 29).
	require.Equal(t, 6, changes)

	// Before the first commit the body is empty.
	require.Empty(t, bodies[7], "n=8: bodyEnd=3 < threshold")
	require.NotEmpty(t, bodies[8], "n=9: first commit")
}

func TestCache_BodyUnchangedByteForByte(t *testing.T) {
	t.Parallel()

	c := NewCache(WithTailLen(5), WithTailOverlap(2), WithCommitThreshold(4))
	c.Update(linePoints(9), 4)
	committed := c.Update(linePoints(10), 4).Body
	require.NotEmpty(t, committed)

	// Advance the boundary by less than the threshold: identical bytes.
	for n := 11; n <= 12; n++ {
		require.Equal(t, committed, c.Update(linePoints(n), 4).Body)
	}
	// Crossing the threshold updates it.
	require.NotEqual(t, committed, c.Update(linePoints(13), 4).Body)
}

func TestCache_TailAlwaysCoversNewestPoint(t *testing.T) {
	t.Parallel()

	c := NewCache()
	for n := 1; n <= 80; n++ {
		pts := linePoints(n)
		frame := c.Update(pts, 4)
		last := pts[len(pts)-1]
		needle := fmt.Sprintf("%.2f", last.X)
		require.Contains(t, frame.Tail, needle, "n=%d: tail must include the newest point", n)
	}
}

func TestCache_ResetOnShrink(t *testing.T) {
	t.Parallel()

	c := NewCache(WithTailLen(5), WithTailOverlap(2), WithCommitThreshold(4))
	frame := c.Update(linePoints(30), 4)
	require.NotEmpty(t, frame.Body)

	// A shorter point list means a new stroke reused the buffer.
	frame = c.Update(linePoints(3), 4)
	require.Empty(t, frame.Body)
	require.NotEmpty(t, frame.Tail)
}

func TestCache_TextureSubsCachedWithBody(t *testing.T) {
	t.Parallel()

	c := NewCache(WithTailLen(5), WithTailOverlap(2), WithCommitThreshold(4), WithTextureSubs(2))
	frame := c.Update(linePoints(20), 6)
	require.Len(t, frame.BodySubs, 2)

	again := c.Update(linePoints(21), 6)
	require.Equal(t, frame.BodySubs, again.BodySubs, "subs only change on commit")
}

func TestFrame_PathConcatenation(t *testing.T) {
	t.Parallel()

	f := Frame{Body: "M0,0 Z", BodySubs: []string{"M1,1"}, Tail: "M2,2 Z"}
	require.Equal(t, "M0,0 Z M1,1 M2,2 Z", f.Path())

	require.Equal(t, "M2,2 Z", Frame{Tail: "M2,2 Z"}.Path())
}

func TestOutlinePath_ClosedAndSymmetric(t *testing.T) {
	t.Parallel()

	path := outlinePath(linePoints(3), 2)
	require.True(t, strings.HasPrefix(path, "M"))
	require.True(t, strings.HasSuffix(path, "Z"))
	// A horizontal 3-point line with width 2 offsets y by ±1.
	require.Contains(t, path, "-1.00")
	require.Contains(t, path, "1.00")
}

func TestOutlinePath_SinglePointIsDot(t *testing.T) {
	t.Parallel()

	path := outlinePath([]Point{{X: 5, Y: 5}}, 2)
	require.True(t, strings.HasSuffix(path, "Z"))
	require.Contains(t, path, "4.00")
	require.Contains(t, path, "6.00")
}

func TestPointMath(t *testing.T) {
	t.Parallel()

	require.Equal(t, Point{X: 0, Y: 1}, Point{X: 1, Y: 0}.Perp())
	require.Equal(t, Point{}, Point{}.Normalize())
	n := Point{X: 3, Y: 4}.Normalize()
	require.InDelta(t, 1.0, n.Length(), 1e-9)
}
