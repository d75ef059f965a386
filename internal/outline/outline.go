// Package outline turns a growing point sequence into a renderable vector
// outline without re-fitting the whole stroke every frame.
//
// The point list splits into a body (everything already committed to the
// cache) and a tail (the uncommitted points plus a small overlap for a
// seamless join). The body outline recomputes only when the body boundary
// has advanced by a commit threshold; the tail recomputes every frame but
// is bounded, so per-frame cost stays flat no matter how long the stroke
// grows.
package outline

import (
	"fmt"
	"math"
	"strings"

	"github.com/dmfenton/Sketchpad-sub000/internal/protocol"
)

// Point is a canvas-space coordinate with vector helpers.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Length returns the vector length.
func (p Point) Length() float64 { return math.Sqrt(p.X*p.X + p.Y*p.Y) }

// Normalize returns a unit vector, or the zero vector for zero input.
func (p Point) Normalize() Point {
	l := p.Length()
	if l == 0 {
		return Point{}
	}
	return Point{X: p.X / l, Y: p.Y / l}
}

// Perp returns the counter-clockwise perpendicular.
func (p Point) Perp() Point { return Point{X: -p.Y, Y: p.X} }

// Defaults tuned against hand-drawn stroke point rates.
const (
	DefaultTailLen         = 15
	DefaultTailOverlap     = 3
	DefaultCommitThreshold = 20
)

// Frame is the renderable geometry for one frame: the cached body, any
// cached texture sub-strokes, and the freshly computed tail.
type Frame struct {
	Body     string
	BodySubs []string
	Tail     string
}

// Path returns the concatenated path data for rendering.
func (f Frame) Path() string {
	parts := make([]string, 0, 2+len(f.BodySubs))
	if f.Body != "" {
		parts = append(parts, f.Body)
	}
	parts = append(parts, f.BodySubs...)
	if f.Tail != "" {
		parts = append(parts, f.Tail)
	}
	return strings.Join(parts, " ")
}

// Cache incrementally outlines the stroke currently being drawn.
type Cache struct {
	tailLen     int
	overlap     int
	commitEvery int
	textureSubs int

	committed int
	bodyPath  string
	bodySubs  []string
	lastTotal int
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTailLen overrides the tail window length.
func WithTailLen(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.tailLen = n
		}
	}
}

// WithTailOverlap overrides the body/tail overlap.
func WithTailOverlap(n int) CacheOption {
	return func(c *Cache) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// WithCommitThreshold overrides how far the body boundary must advance
// before the cached body recomputes.
func WithCommitThreshold(n int) CacheOption {
	return func(c *Cache) {
		if n > 0 {
			c.commitEvery = n
		}
	}
}

// WithTextureSubs sets how many texture sub-strokes accompany the body
// outline (for dry-brush style rendering). Zero disables them.
func WithTextureSubs(n int) CacheOption {
	return func(c *Cache) {
		if n >= 0 {
			c.textureSubs = n
		}
	}
}

// NewCache returns a Cache with the default tuning.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		tailLen:     DefaultTailLen,
		overlap:     DefaultTailOverlap,
		commitEvery: DefaultCommitThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reset drops all cached geometry.
func (c *Cache) Reset() {
	c.committed = 0
	c.bodyPath = ""
	c.bodySubs = nil
	c.lastTotal = 0
}

// Update ingests the current point list and returns this frame's geometry.
// A shrinking point count means a new stroke reused the buffer, which
// resets the cache immediately. The rendered body lags the true input by
// at most the commit threshold.
func (c *Cache) Update(points []Point, width float64) Frame {
	if len(points) < c.lastTotal {
		c.Reset()
	}
	c.lastTotal = len(points)

	bodyEnd := len(points) - c.tailLen
	if bodyEnd < 0 {
		bodyEnd = 0
	}

	if bodyEnd-c.committed >= c.commitEvery {
		c.bodyPath = outlinePath(points[:bodyEnd], width)
		c.bodySubs = texturePaths(points[:bodyEnd], width, c.textureSubs)
		c.committed = bodyEnd
	}

	tailStart := c.committed - c.overlap
	if tailStart < 0 {
		tailStart = 0
	}

	return Frame{
		Body:     c.bodyPath,
		BodySubs: c.bodySubs,
		Tail:     outlinePath(points[tailStart:], width),
	}
}

// outlinePath builds a closed outline around a polyline by offsetting each
// point along the averaged normal of its adjacent segments, walking the
// left side forward and the right side back.
func outlinePath(points []Point, width float64) string {
	if len(points) == 0 {
		return ""
	}
	half := width / 2
	if half <= 0 {
		half = 0.5
	}
	if len(points) == 1 {
		p := points[0]
		// Degenerate stroke: a small diamond stands in for a dot.
		return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f L%.2f,%.2f L%.2f,%.2f Z",
			p.X-half, p.Y, p.X, p.Y-half, p.X+half, p.Y, p.X, p.Y+half)
	}

	normals := pointNormals(points)
	var b strings.Builder
	for i, p := range points {
		q := p.Add(normals[i].Mul(half))
		if i == 0 {
			fmt.Fprintf(&b, "M%.2f,%.2f", q.X, q.Y)
		} else {
			fmt.Fprintf(&b, " L%.2f,%.2f", q.X, q.Y)
		}
	}
	for i := len(points) - 1; i >= 0; i-- {
		q := points[i].Sub(normals[i].Mul(half))
		fmt.Fprintf(&b, " L%.2f,%.2f", q.X, q.Y)
	}
	b.WriteString(" Z")
	return b.String()
}

// pointNormals returns the unit normal at each point, averaging the
// normals of the segments meeting there.
func pointNormals(points []Point) []Point {
	n := len(points)
	normals := make([]Point, n)
	for i := 0; i < n; i++ {
		var dir Point
		if i > 0 {
			dir = dir.Add(points[i].Sub(points[i-1]).Normalize())
		}
		if i < n-1 {
			dir = dir.Add(points[i+1].Sub(points[i]).Normalize())
		}
		normal := dir.Normalize().Perp()
		if normal == (Point{}) {
			normal = Point{X: 0, Y: -1}
		}
		normals[i] = normal
	}
	return normals
}

// texturePaths produces count thin offset polylines inside the stroke
// width, giving a dry-brush texture. Offsets are deterministic so cached
// output is stable.
func texturePaths(points []Point, width float64, count int) []string {
	if count <= 0 || len(points) < 2 {
		return nil
	}
	normals := pointNormals(points)
	paths := make([]string, 0, count)
	for s := 1; s <= count; s++ {
		offset := width * (float64(s)/float64(count+1) - 0.5)
		var b strings.Builder
		for i, p := range points {
			q := p.Add(normals[i].Mul(offset))
			if i == 0 {
				fmt.Fprintf(&b, "M%.2f,%.2f", q.X, q.Y)
			} else {
				fmt.Fprintf(&b, " L%.2f,%.2f", q.X, q.Y)
			}
		}
		paths = append(paths, b.String())
	}
	return paths
}

// FromStroke converts the store's live point stream into outline points.
func FromStroke(points []protocol.Point) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{X: p.X, Y: p.Y}
	}
	return out
}
