package processor

import (
	"image"

	"github.com/disintegration/imaging"
)

// fitToCanvas center-crops img to the canvas size without distortion.
func fitToCanvas(img image.Image, canvas image.Rectangle) *image.NRGBA {
	return imaging.Fill(img, canvas.Dx(), canvas.Dy(), imaging.Center, imaging.Lanczos)
}

// applyAlpha replaces the alpha channel of img with mask. Both must start
// at the origin and have the same size.
func applyAlpha(img *image.NRGBA, mask *image.Gray) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		pix := img.Pix[y*img.Stride : y*img.Stride+w*4]
		alpha := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x := 0; x < w; x++ {
			pix[x*4+3] = alpha[x]
		}
	}
}

func cropToCircle(img image.Image, circle Circle) *image.NRGBA {
	return imaging.Crop(img, circle.Bounds())
}
