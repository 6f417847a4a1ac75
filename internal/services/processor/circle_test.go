package processor

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInscribeSquare(t *testing.T) {
	c := Inscribe(200, 200, DefaultPadding)

	assert.InDelta(t, 2.0, c.Left, 1e-9)
	assert.InDelta(t, 2.0, c.Top, 1e-9)
	assert.InDelta(t, 198.0, c.Right, 1e-9)
	assert.InDelta(t, 198.0, c.Bottom, 1e-9)
	assert.Equal(t, image.Rect(2, 2, 198, 198), c.Bounds())

	cx, cy := c.Center()
	assert.InDelta(t, 100.0, cx, 1e-9)
	assert.InDelta(t, 100.0, cy, 1e-9)
}

func TestInscribeLandscapeAndPortrait(t *testing.T) {
	landscape := Inscribe(300, 200, DefaultPadding)
	assert.Equal(t, image.Rect(52, 2, 248, 198), landscape.Bounds())

	portrait := Inscribe(200, 300, DefaultPadding)
	assert.Equal(t, image.Rect(2, 52, 198, 248), portrait.Bounds())

	rx, ry := landscape.Radii()
	assert.InDelta(t, rx, ry, 1e-9, "box must be square for non-square sources")
}

func TestBoundsFloorsFractionalEdges(t *testing.T) {
	// 150 * 0.01 = 1.5, so the box is [1.5, 148.5].
	c := Inscribe(150, 150, DefaultPadding)
	assert.Equal(t, image.Rect(1, 1, 148, 148), c.Bounds())
}

func TestBoundsEmptyForSinglePixel(t *testing.T) {
	c := Inscribe(1, 1, DefaultPadding)
	assert.True(t, c.Bounds().Empty())
}

func TestContains(t *testing.T) {
	c := Circle{Left: 0, Top: 0, Right: 10, Bottom: 10}

	assert.True(t, c.Contains(5, 5))
	assert.True(t, c.Contains(10, 5), "boundary is inside")
	assert.False(t, c.Contains(0.5, 0.5))
	assert.False(t, c.Contains(11, 5))

	degenerate := Circle{Left: 3, Top: 3, Right: 3, Bottom: 3}
	assert.False(t, degenerate.Contains(3, 3))
}

func TestMaskHardEdgeIsBinary(t *testing.T) {
	c := Inscribe(64, 64, DefaultPadding)
	mask := c.Mask(64, 64, EdgeHard)

	assert.Equal(t, image.Rect(0, 0, 64, 64), mask.Rect)
	for _, v := range mask.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("hard mask contains partial value %d", v)
		}
	}
	assert.Equal(t, uint8(255), mask.GrayAt(32, 32).Y)
	assert.Equal(t, uint8(0), mask.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), mask.GrayAt(63, 63).Y)
}

func TestMaskSmoothEdgeHasPartialCoverage(t *testing.T) {
	c := Inscribe(64, 64, DefaultPadding)
	mask := c.Mask(64, 64, EdgeSmooth)

	assert.Equal(t, uint8(255), mask.GrayAt(32, 32).Y)
	assert.Equal(t, uint8(0), mask.GrayAt(0, 0).Y)

	partial := 0
	for _, v := range mask.Pix {
		if v != 0 && v != 255 {
			partial++
		}
	}
	assert.Greater(t, partial, 0, "smooth mask should blend the boundary")
}

func TestMaskOnNonSquareCanvas(t *testing.T) {
	c := Inscribe(300, 200, DefaultPadding)
	mask := c.Mask(300, 200, EdgeHard)

	assert.Equal(t, uint8(255), mask.GrayAt(150, 100).Y)
	// Left and right margins outside the square are untouched.
	assert.Equal(t, uint8(0), mask.GrayAt(20, 100).Y)
	assert.Equal(t, uint8(0), mask.GrayAt(280, 100).Y)
}
