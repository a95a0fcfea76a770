// Package render turns a cppn.Model into images by evaluating it at every pixel.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"runtime"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/errgroup"

	"cppnart/internal/cppn"
)

// Options controls frame geometry.
type Options struct {
	Width, Height int
	Scale         float64 // coordinate zoom; default 1
	Workers       int     // rows rendered concurrently; default GOMAXPROCS
}

// Renderer evaluates a model over a fixed pixel grid. It is safe for concurrent use.
type Renderer struct {
	model *cppn.Model
	opts  Options
	grid  []point
}

type point struct{ x, y, r float64 }

func New(model *cppn.Model, opts Options) (*Renderer, error) {
	if model == nil {
		return nil, errors.New("render: nil model")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("render: invalid size %dx%d", opts.Width, opts.Height)
	}
	if model.InputUnits() != 4 {
		return nil, fmt.Errorf("render: model takes %d inputs, want 4 (x, y, z, r)", model.InputUnits())
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Renderer{model: model, opts: opts, grid: Grid(opts.Width, opts.Height, opts.Scale)}, nil
}

func (r *Renderer) Options() Options { return r.opts }

// Grid lays out pixel coordinates row by row. Both axes are normalized by the
// mean side length so non-square frames keep square pixels.
func Grid(w, h int, scale float64) []point {
	n := float64(w+h) / 2
	xs := linspace(-float64(w)/n*scale, float64(w)/n*scale, w)
	ys := linspace(-float64(h)/n*scale, float64(h)/n*scale, h)
	out := make([]point, 0, w*h)
	for _, y := range ys {
		for _, x := range xs {
			out = append(out, point{x: x, y: y, r: math.Hypot(x, y)})
		}
	}
	return out
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	return out
}

// Frame renders the model with latent input z.
func (r *Renderer) Frame(ctx context.Context, z float64) (*image.RGBA, error) {
	w, h := r.opts.Width, r.opts.Height
	ch := r.model.OutputUnits()
	pred := make([]float64, w*h*ch)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for row := 0; row < h; row++ {
		row := row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			in := make([]float64, 4)
			for col := 0; col < w; col++ {
				i := row*w + col
				p := r.grid[i]
				in[0], in[1], in[2], in[3] = p.x, p.y, z, p.r
				out, err := r.model.Predict(in)
				if err != nil {
					return err
				}
				copy(pred[i*ch:(i+1)*ch], out)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	normalize(pred, ch)
	return toImage(pred, w, h, ch), nil
}

// normalize rescales each channel to [0, 1] over the whole frame.
// A constant channel maps to 0.
func normalize(pred []float64, ch int) {
	for c := 0; c < ch; c++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := c; i < len(pred); i += ch {
			lo = math.Min(lo, pred[i])
			hi = math.Max(hi, pred[i])
		}
		span := hi - lo
		for i := c; i < len(pred); i += ch {
			if span == 0 {
				pred[i] = 0
			} else {
				pred[i] = (pred[i] - lo) / span
			}
		}
	}
}

func toImage(pred []float64, w, h, ch int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * ch
			img.SetRGBA(x, y, pixelColor(pred[i:i+ch]))
		}
	}
	return img
}

// pixelColor maps normalized channels to a color: three channels are read as
// HSV, one channel as gray.
func pixelColor(v []float64) color.RGBA {
	if len(v) == 1 {
		g := uint8(math.Round(clamp01(v[0]) * 255))
		return color.RGBA{R: g, G: g, B: g, A: 255}
	}
	hue := math.Mod(clamp01(v[0])*360, 360)
	c := colorful.Hsv(hue, clamp01(v[1]), clamp01(v[2])).Clamped()
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}
