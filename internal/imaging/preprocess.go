package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// PreprocessOptions controls how an image is prepared for recognition.
type PreprocessOptions struct {
	// Contrast is a percentage change in [-100, 100]; 0 leaves contrast alone.
	Contrast float64 `json:"contrast"`

	// Scale enlarges (or shrinks) the image before recognition. Values <= 0
	// are treated as 1.
	Scale float64 `json:"scale"`

	// AutoInvert flips light-on-dark pages to dark-on-light.
	AutoInvert bool `json:"auto_invert"`
}

// Prepared is a preprocessed image plus what was done to it.
type Prepared struct {
	Image    image.Image `json:"-"`
	Scale    float64     `json:"scale"`
	Inverted bool        `json:"inverted"`

	// Lightness is the mean CIE L* of the source, 0 (black) to 1 (white).
	Lightness float64 `json:"lightness"`
}

// Preprocess converts img to grayscale, adjusts contrast, inverts dark pages
// when asked and rescales.
func Preprocess(img image.Image, opts PreprocessOptions) (*Prepared, error) {
	if opts.Contrast < -100 || opts.Contrast > 100 {
		return nil, fmt.Errorf("contrast must be within [-100, 100], got %v", opts.Contrast)
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	var out image.Image = effect.Grayscale(img)
	if opts.Contrast != 0 {
		out = adjust.Contrast(out, opts.Contrast/100)
	}

	p := &Prepared{Scale: scale, Lightness: MeanLightness(out)}
	if opts.AutoInvert && p.Lightness < 0.5 {
		out = effect.Invert(out)
		p.Inverted = true
	}

	if scale != 1 {
		b := out.Bounds()
		w := max(1, int(float64(b.Dx())*scale))
		h := max(1, int(float64(b.Dy())*scale))
		out = imaging.Resize(out, w, h, imaging.Lanczos)
	}

	p.Image = out
	return p, nil
}

// maxLightnessSamples bounds the work MeanLightness does on large pages.
const maxLightnessSamples = 4096

// MeanLightness returns the average CIE L* over a grid of sampled pixels.
func MeanLightness(img image.Image) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	step := 1
	for (b.Dx()/step)*(b.Dy()/step) > maxLightnessSamples {
		step++
	}

	var sum float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				// Fully transparent: treat as white paper.
				sum++
				n++
				continue
			}
			l, _, _ := c.Lab()
			sum += l
			n++
		}
	}
	return sum / float64(n)
}

// EncodePNG encodes img for handing to the engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
