// Package render turns a content string into a QR symbol and exports it as
// PNG or SVG. Symbol encoding is done by github.com/skip2/go-qrcode.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
)

var ErrEmptyContent = errors.New("render: empty content")

// Options control the exported artifacts.
type Options struct {
	Width      int    // PNG width and height in pixels
	Margin     int    // quiet zone in modules
	SVGSize    int    // SVG width and height attributes
	Level      string // L, M, Q or H
	Foreground string // #RRGGBB
	Background string // #RRGGBB
}

func DefaultOptions() Options {
	return Options{
		Width:      512,
		Margin:     2,
		SVGSize:    256,
		Level:      "M",
		Foreground: "#000000",
		Background: "#FFFFFF",
	}
}

// Symbol is a QR module matrix without quiet zone; true is a dark module.
type Symbol struct {
	Modules [][]bool
}

// Size is the number of modules per side.
func (s Symbol) Size() int {
	return len(s.Modules)
}

// Renderer is stateless and safe for concurrent use.
type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

func (r *Renderer) Options() Options {
	return r.opts
}

func recoveryLevel(s string) qrcode.RecoveryLevel {
	switch strings.ToUpper(s) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// Symbol encodes content.
func (r *Renderer) Symbol(content string) (Symbol, error) {
	if content == "" {
		return Symbol{}, ErrEmptyContent
	}
	q, err := qrcode.New(content, recoveryLevel(r.opts.Level))
	if err != nil {
		return Symbol{}, fmt.Errorf("encode qr: %w", err)
	}
	q.DisableBorder = true
	return Symbol{Modules: q.Bitmap()}, nil
}

// Render writes content to w in format f.
func (r *Renderer) Render(w io.Writer, f Format, content string) error {
	switch f {
	case FormatPNG:
		return r.PNG(w, content)
	case FormatSVG:
		return r.SVG(w, content)
	default:
		_, err := ParseFormat(string(f))
		return err
	}
}

// PNG draws the symbol on a Width x Width canvas. Each module gets the same
// whole number of pixels; leftover pixels are split around the quiet zone.
// The canvas grows when the symbol does not fit at one pixel per module.
func (r *Renderer) PNG(w io.Writer, content string) error {
	sym, err := r.Symbol(content)
	if err != nil {
		return err
	}

	total := sym.Size() + 2*r.opts.Margin
	scale := r.opts.Width / total
	if scale < 1 {
		scale = 1
	}
	size := r.opts.Width
	if total*scale > size {
		size = total * scale
	}
	origin := (size-total*scale)/2 + r.opts.Margin*scale

	dc := gg.NewContext(size, size)
	dc.SetHexColor(r.opts.Background)
	dc.Clear()
	dc.SetHexColor(r.opts.Foreground)
	for y, row := range sym.Modules {
		for x, dark := range row {
			if dark {
				dc.DrawRectangle(float64(origin+x*scale), float64(origin+y*scale), float64(scale), float64(scale))
			}
		}
	}
	dc.Fill()

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SVG writes the symbol in module coordinates: one background rect and one
// path of unit squares, scaled to SVGSize by the viewBox.
func (r *Renderer) SVG(w io.Writer, content string) error {
	sym, err := r.Symbol(content)
	if err != nil {
		return err
	}

	m := r.opts.Margin
	total := sym.Size() + 2*m

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		r.opts.SVGSize, r.opts.SVGSize, total, total)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="%s"/>`, total, total, r.opts.Background)
	sb.WriteString(`<path d="`)
	for y, row := range sym.Modules {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&sb, "M%d,%dh1v1h-1z", x+m, y+m)
			}
		}
	}
	fmt.Fprintf(&sb, `" fill="%s"/>`, r.opts.Foreground)
	sb.WriteString(`</svg>`)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}
