package processor

import (
	"image"
	"math"
)

// supersample is the per-axis sample count used by EdgeSmooth.
const supersample = 4

// Circle is the ellipse inscribed in a (possibly fractional) bounding box.
// For the boxes produced by Inscribe the box is square, so it is a circle.
type Circle struct {
	Left, Top, Right, Bottom float64
}

// Inscribe centers a circle of diameter min(w, h) on a w x h canvas and
// pulls every edge inward by padding*min(w, h).
func Inscribe(w, h int, padding float64) Circle {
	minDim := float64(min(w, h))
	pad := minDim * padding

	return Circle{
		Left:   (float64(w)-minDim)/2 + pad,
		Top:    (float64(h)-minDim)/2 + pad,
		Right:  (float64(w)+minDim)/2 - pad,
		Bottom: (float64(h)+minDim)/2 - pad,
	}
}

// Center returns the centre of the bounding box.
func (c Circle) Center() (float64, float64) {
	return (c.Left + c.Right) / 2, (c.Top + c.Bottom) / 2
}

// Radii returns the horizontal and vertical semi-axes.
func (c Circle) Radii() (float64, float64) {
	return (c.Right - c.Left) / 2, (c.Bottom - c.Top) / 2
}

// Contains reports whether the point lies on or inside the ellipse.
func (c Circle) Contains(x, y float64) bool {
	rx, ry := c.Radii()
	if rx <= 0 || ry <= 0 {
		return false
	}

	cx, cy := c.Center()
	dx := (x - cx) / rx
	dy := (y - cy) / ry
	return dx*dx+dy*dy <= 1
}

// Bounds is the crop rectangle: every edge floored to a pixel boundary.
func (c Circle) Bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(c.Left)),
		int(math.Floor(c.Top)),
		int(math.Floor(c.Right)),
		int(math.Floor(c.Bottom)),
	)
}

// Mask draws the filled ellipse on a w x h canvas that starts fully
// transparent. With EdgeHard a pixel is 255 when its center is inside the
// ellipse and 0 otherwise.
func (c Circle) Mask(w, h int, edge Edge) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))

	// Pixels outside the outer box can never be covered.
	area := image.Rect(
		int(math.Floor(c.Left)),
		int(math.Floor(c.Top)),
		int(math.Ceil(c.Right)),
		int(math.Ceil(c.Bottom)),
	).Intersect(mask.Rect)

	for y := area.Min.Y; y < area.Max.Y; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x := area.Min.X; x < area.Max.X; x++ {
			row[x] = c.coverage(x, y, edge)
		}
	}

	return mask
}

func (c Circle) coverage(x, y int, edge Edge) uint8 {
	if edge != EdgeSmooth {
		if c.Contains(float64(x)+0.5, float64(y)+0.5) {
			return 255
		}
		return 0
	}

	const total = supersample * supersample
	inside := 0
	for sy := 0; sy < supersample; sy++ {
		py := float64(y) + (float64(sy)+0.5)/supersample
		for sx := 0; sx < supersample; sx++ {
			px := float64(x) + (float64(sx)+0.5)/supersample
			if c.Contains(px, py) {
				inside++
			}
		}
	}

	return uint8((inside*255 + total/2) / total)
}
