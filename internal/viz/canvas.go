package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Set turns on the dot at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	// Early bounds check for negative coordinates
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	subX := x % 2
	subY := y % 4

	c.Grid[row][col] |= rune(pixelMap[subY][subX])
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// PlotPath draws a polyline through (xs[i], ys[i]), mapping the square
// [lo, hi]² onto the canvas. Points outside the square are pinned to its
// edge.
func (c *Canvas) PlotPath(xs, ys []float64, lo, hi float64) {
	pw, ph := c.Width*2, c.Height*4
	toPx := func(x, y float64) (int, int) {
		x = math.Max(lo, math.Min(hi, x))
		y = math.Max(lo, math.Min(hi, y))
		px := int((x - lo) / (hi - lo) * float64(pw-1))
		py := int((hi - y) / (hi - lo) * float64(ph-1))
		return px, py
	}

	n := min(len(xs), len(ys))
	if n == 0 {
		return
	}
	px, py := toPx(xs[0], ys[0])
	c.Set(px, py)
	for i := 1; i < n; i++ {
		nx, ny := toPx(xs[i], ys[i])
		c.DrawLine(px, py, nx, ny)
		px, py = nx, ny
	}
}

// Mark sets a single point in world coordinates.
func (c *Canvas) Mark(x, y, lo, hi float64) {
	px := int((x - lo) / (hi - lo) * float64(c.Width*2-1))
	py := int((hi - y) / (hi - lo) * float64(c.Height*4-1))
	c.Set(px, py)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
