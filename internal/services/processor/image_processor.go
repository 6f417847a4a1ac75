package processor

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/circle-mask/internal/services/codec"
	"go.uber.org/zap"
)

// ImageProcessor crops images to a transparent circle. It holds no mutable
// state and is safe for concurrent use.
type ImageProcessor struct {
	codec   codec.Codec
	options Options
	logger  *zap.Logger
}

// Result is an encoded PNG together with its pixel size.
type Result struct {
	Data         []byte
	Width        int
	Height       int
	SourceFormat string
}

func NewImageProcessor(c codec.Codec, options Options, logger *zap.Logger) (*ImageProcessor, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		c = codec.NewPNGCodec()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if options.Edge == "" {
		options.Edge = EdgeHard
	}

	return &ImageProcessor{
		codec:   c,
		options: options,
		logger:  logger,
	}, nil
}

func (p *ImageProcessor) Options() Options {
	return p.options
}

// WithEdge returns a processor sharing codec and logger but using edge.
func (p *ImageProcessor) WithEdge(edge Edge) *ImageProcessor {
	if edge == "" || edge == p.options.Edge {
		return p
	}
	clone := *p
	clone.options.Edge = edge
	return &clone
}

// Apply runs the in-memory part of the transform: normalize to NRGBA,
// build the circle mask on a canvas of the source size, fit the source to
// that canvas, use the mask as alpha and crop to the circle's box.
func (p *ImageProcessor) Apply(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image provided")
	}

	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", w, h)
	}

	circle := Inscribe(w, h, p.options.Padding)
	bounds := circle.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: %dx%d source", ErrEmptyCircle, w, h)
	}

	mask := circle.Mask(w, h, p.options.Edge)
	fitted := fitToCanvas(src, mask.Rect)
	applyAlpha(fitted, mask)

	p.logger.Debug("Circle mask applied",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Stringer("crop", bounds),
		zap.String("edge", string(p.options.Edge)))

	return cropToCircle(fitted, circle), nil
}

// Process decodes data, applies the circle mask and encodes a PNG.
func (p *ImageProcessor) Process(data []byte) (*Result, error) {
	result, err := p.process(data)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *ImageProcessor) process(data []byte) (*Result, *ProcessingError) {
	img, format, err := p.codec.Decode(data)
	if err != nil {
		return nil, &ProcessingError{Stage: StageDecode, Err: err}
	}

	masked, err := p.Apply(img)
	if err != nil {
		return nil, &ProcessingError{Stage: StageMask, Err: err}
	}

	encoded, err := p.codec.Encode(masked)
	if err != nil {
		return nil, &ProcessingError{Stage: StageEncode, Err: err}
	}

	return &Result{
		Data:         encoded,
		Width:        masked.Rect.Dx(),
		Height:       masked.Rect.Dy(),
		SourceFormat: format,
	}, nil
}
