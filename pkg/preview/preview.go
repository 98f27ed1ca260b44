// Package preview draws flat orthographic thumbnails of tessellated scenes
// so an artist can check generated proxies against the render geometry.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/HugoSmits86/nativewebp"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/chazu/collidergen/pkg/kernel"
)

// View selects the projection plane.
type View string

const (
	ViewTop   View = "top"   // looking down Y, X right, Z down the image
	ViewFront View = "front" // looking along Z, X right, Y up
	ViewSide  View = "side"  // looking along X, Z right, Y up
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewTop, ViewFront, ViewSide:
		return v, nil
	}
	return "", fmt.Errorf("preview: unknown view %q (want top, front or side)", s)
}

// project maps a world point to image-plane coordinates, y growing down.
func (v View) project(p mgl64.Vec3) (float64, float64) {
	switch v {
	case ViewFront:
		return p[0], -p[1]
	case ViewSide:
		return p[2], -p[1]
	default:
		return p[0], p[2]
	}
}

// Options control rendering.
type Options struct {
	Size        int  // output edge length in pixels
	View        View // projection
	Supersample int  // render at Size*Supersample, then downscale
	Margin      float64
	Background  color.NRGBA
}

// DefaultOptions returns a 256px top view on a transparent background.
func DefaultOptions() Options {
	return Options{
		Size:        256,
		View:        ViewTop,
		Supersample: 3,
		Margin:      0.06,
	}
}

// Limits on the rendered and supersampled canvas.
const (
	MaxSize        = 4096
	MaxSupersample = 4
)

func (o *Options) normalize() {
	d := DefaultOptions()
	if o.Size <= 0 {
		o.Size = d.Size
	}
	o.Size = min(o.Size, MaxSize)
	if o.View == "" {
		o.View = d.View
	}
	if o.Supersample <= 0 {
		o.Supersample = 1
	}
	o.Supersample = min(o.Supersample, MaxSupersample)
	if o.Margin < 0 || o.Margin >= 0.5 {
		o.Margin = d.Margin
	}
}

// Colors per mesh kind. Proxies are translucent so the geometry below
// stays visible.
var kindColors = map[kernel.Kind]color.NRGBA{
	kernel.KindRender:  {R: 150, G: 150, B: 150, A: 255},
	kernel.KindBox:     {R: 60, G: 179, B: 113, A: 150},
	kernel.KindCapsule: {R: 255, G: 140, B: 0, A: 150},
	kernel.KindSphere:  {R: 30, G: 144, B: 255, A: 150},
	kernel.KindMesh:    {R: 186, G: 85, B: 211, A: 150},
}

// ColorFor returns the fill color for a mesh kind.
func ColorFor(k kernel.Kind) color.NRGBA {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return kindColors[kernel.KindRender]
}

// Render draws meshes into a square image. Render geometry is drawn first
// and proxies on top.
func Render(meshes []*kernel.Mesh, opts Options) *image.NRGBA {
	opts.normalize()
	canvasSize := opts.Size * opts.Supersample
	canvas := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	fr, ok := frameFor(meshes, opts.View)
	if ok {
		fr.fit(float64(canvasSize), opts.Margin)
		ras := vector.NewRasterizer(canvasSize, canvasSize)
		for _, pass := range []bool{false, true} {
			for _, m := range meshes {
				if m.Kind.IsProxy() != pass || m.IsEmpty() {
					continue
				}
				fillMesh(ras, canvas, m, opts.View, fr)
			}
		}
	}

	return downsample(canvas, opts.Size)
}

// frame maps projected coordinates onto the canvas.
type frame struct {
	minU, minV, maxU, maxV float64
	scale, offU, offV      float64
}

func frameFor(meshes []*kernel.Mesh, v View) (frame, bool) {
	fr := frame{
		minU: math.Inf(1), minV: math.Inf(1),
		maxU: math.Inf(-1), maxV: math.Inf(-1),
	}
	found := false
	for _, m := range meshes {
		for i := 0; i < m.VertexCount(); i++ {
			u, w := v.project(m.Vertex(i))
			fr.minU, fr.maxU = math.Min(fr.minU, u), math.Max(fr.maxU, u)
			fr.minV, fr.maxV = math.Min(fr.minV, w), math.Max(fr.maxV, w)
			found = true
		}
	}
	return fr, found
}

// fit scales the bounds uniformly into a size x size canvas with margin on
// each side, centering the shorter axis.
func (fr *frame) fit(size, margin float64) {
	spanU, spanV := fr.maxU-fr.minU, fr.maxV-fr.minV
	span := math.Max(spanU, spanV)
	if span <= 0 {
		span = 1
	}
	usable := size * (1 - 2*margin)
	fr.scale = usable / span
	fr.offU = (size - spanU*fr.scale) / 2
	fr.offV = (size - spanV*fr.scale) / 2
}

func (fr *frame) toPixel(u, v float64) (float32, float32) {
	return float32((u-fr.minU)*fr.scale + fr.offU), float32((v-fr.minV)*fr.scale + fr.offV)
}

// fillMesh rasterizes every triangle of m in one pass. Triangles are wound
// the same way on screen so overlapping ones do not cancel out.
func fillMesh(ras *vector.Rasterizer, dst draw.Image, m *kernel.Mesh, v View, fr frame) {
	b := dst.Bounds()
	ras.Reset(b.Dx(), b.Dy())
	ras.DrawOp = draw.Over

tris:
	for t := 0; t < m.TriangleCount(); t++ {
		var x, y [3]float32
		for j := 0; j < 3; j++ {
			idx := int(m.Indices[3*t+j])
			if idx >= m.VertexCount() {
				continue tris
			}
			x[j], y[j] = fr.toPixel(v.project(m.Vertex(idx)))
		}
		area := (x[1]-x[0])*(y[2]-y[0]) - (x[2]-x[0])*(y[1]-y[0])
		if area == 0 {
			continue
		}
		if area < 0 {
			x[1], x[2] = x[2], x[1]
			y[1], y[2] = y[2], y[1]
		}
		ras.MoveTo(x[0], y[0])
		ras.LineTo(x[1], y[1])
		ras.LineTo(x[2], y[2])
		ras.ClosePath()
	}
	ras.Draw(dst, b, image.NewUniform(ColorFor(m.Kind)), image.Point{})
}

// downsample scales the premultiplied canvas to size with CatmullRom and
// returns it unpremultiplied.
func downsample(canvas *image.RGBA, size int) *image.NRGBA {
	src := canvas
	if canvas.Bounds().Dx() != size {
		src = image.NewRGBA(image.Rect(0, 0, size, size))
		draw.CatmullRom.Scale(src, src.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	}
	out := image.NewNRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, image.Point{}, draw.Src)
	return out
}

// Encode writes img as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("preview: encode webp: %w", err)
	}
	return nil
}
