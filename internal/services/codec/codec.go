// Package codec isolates image decoding and encoding from the masking
// geometry, so the pixel transform never touches a format library directly.
package codec

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	// bmp and tiff come in through imaging; webp is registered here.
	_ "golang.org/x/image/webp"
)

// Codec converts between encoded bytes and pixel grids.
type Codec interface {
	Decode(data []byte) (image.Image, string, error)
	Encode(img image.Image) ([]byte, error)
}

// PNGCodec decodes any registered raster format and always encodes PNG,
// which keeps the alpha channel.
type PNGCodec struct {
	compression png.CompressionLevel
	autoOrient  bool
}

type Option func(*PNGCodec)

// WithCompression sets the PNG compression level used by Encode.
func WithCompression(level png.CompressionLevel) Option {
	return func(c *PNGCodec) {
		c.compression = level
	}
}

// WithAutoOrientation makes Decode apply the EXIF orientation tag of JPEG
// input. Without it pixels are taken in stored order.
func WithAutoOrientation() Option {
	return func(c *PNGCodec) {
		c.autoOrient = true
	}
}

func NewPNGCodec(opts ...Option) *PNGCodec {
	c := &PNGCodec{compression: png.DefaultCompression}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseCompression maps "default", "none", "speed" and "best" to a PNG
// compression level. An empty name is the default level.
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "best":
		return png.BestCompression, nil
	default:
		return png.DefaultCompression, errors.Errorf("unknown png compression %q", name)
	}
}

// Decode returns the image and the name of the format it was stored in
// ("jpeg", "png", "webp", ...).
func (c *PNGCodec) Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New("empty image data")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(err, "unrecognized image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(c.autoOrient))
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to decode %s image", format)
	}

	return img, format, nil
}

func (c *PNGCodec) Encode(img image.Image) ([]byte, error) {
	buffer := &bytes.Buffer{}
	if err := imaging.Encode(buffer, img, imaging.PNG, imaging.PNGCompressionLevel(c.compression)); err != nil {
		return nil, errors.Wrap(err, "failed to encode png")
	}
	return buffer.Bytes(), nil
}

// Config reads only the image header.
func Config(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", errors.Wrap(err, "invalid image format")
	}
	return cfg, format, nil
}
