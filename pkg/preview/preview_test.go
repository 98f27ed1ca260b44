package preview

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/collidergen/pkg/kernel"
)

// quad returns a square in the XZ plane as two triangles, wound one way
// and the other so cancellation would show up as a hole.
func quad(kind kernel.Kind, x0, z0, x1, z1 float32) *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: []float32{
			x0, 0, z0, x1, 0, z0, x1, 0, z1,
			x0, 0, z0, x0, 0, z1, x1, 0, z1,
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
		Kind:    kind,
	}
}

func TestParseView(t *testing.T) {
	for _, name := range []string{"top", "front", "side"} {
		v, err := ParseView(name)
		require.NoError(t, err)
		assert.Equal(t, View(name), v)
	}
	_, err := ParseView("iso")
	assert.Error(t, err)
}

func TestRenderEmpty(t *testing.T) {
	img := Render(nil, Options{Size: 32})
	require.Equal(t, 32, img.Bounds().Dx())
	require.Equal(t, 32, img.Bounds().Dy())
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatalf("expected fully transparent image, alpha %d at byte %d", img.Pix[i], i)
		}
	}
}

func TestRenderFillsGeometry(t *testing.T) {
	img := Render([]*kernel.Mesh{quad(kernel.KindRender, -1, -1, 1, 1)}, Options{Size: 64, Supersample: 2})

	center := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), center.A, "center should be opaque")
	assert.Equal(t, ColorFor(kernel.KindRender).R, center.R)

	corner := img.NRGBAAt(0, 0)
	assert.Equal(t, uint8(0), corner.A, "margin should stay transparent")
}

func TestRenderProxyOnTop(t *testing.T) {
	meshes := []*kernel.Mesh{
		quad(kernel.KindBox, -0.5, -0.5, 0.5, 0.5),
		quad(kernel.KindRender, -1, -1, 1, 1),
	}
	img := Render(meshes, Options{Size: 64, Supersample: 1})

	c := img.NRGBAAt(32, 32)
	assert.Equal(t, uint8(255), c.A)
	assert.Greater(t, int(c.G), int(c.R), "box proxy tint should dominate the center: %v", c)

	edge := img.NRGBAAt(8, 32)
	assert.Equal(t, ColorFor(kernel.KindRender), edge, "outside the proxy only geometry shows")
}

func TestRenderViews(t *testing.T) {
	// A thin sliver along X: wide in top and front views, a dot from the side.
	sliver := &kernel.Mesh{
		Vertices: []float32{-5, 0, 0, 5, 0, 0, 5, 0.2, 0.2},
		Indices:  []uint32{0, 1, 2},
		Kind:     kernel.KindRender,
	}
	for _, v := range []View{ViewTop, ViewFront, ViewSide} {
		img := Render([]*kernel.Mesh{sliver}, Options{Size: 32, View: v, Supersample: 2})
		assert.Equal(t, 32, img.Bounds().Dx(), string(v))
	}
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, ColorFor(kernel.KindRender), ColorFor("unknown"))
	assert.NotEqual(t, ColorFor(kernel.KindBox), ColorFor(kernel.KindSphere))
	assert.Equal(t, color.NRGBA{R: 255, G: 140, B: 0, A: 150}, ColorFor(kernel.KindCapsule))
}

func TestEncodeWebP(t *testing.T) {
	img := Render([]*kernel.Mesh{quad(kernel.KindSphere, 0, 0, 1, 1)}, Options{Size: 16})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	data := buf.Bytes()
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}

func TestDownsampleKeepsFaintColor(t *testing.T) {
	for _, canvasSize := range []int{2, 4} {
		canvas := image.NewRGBA(image.Rect(0, 0, canvasSize, canvasSize))
		for i := 0; i < len(canvas.Pix); i += 4 {
			// Premultiplied red at alpha 1.
			canvas.Pix[i], canvas.Pix[i+3] = 1, 1
		}
		got := downsample(canvas, 2).NRGBAAt(1, 1)
		assert.Equal(t, uint8(1), got.A, "canvas %d", canvasSize)
		assert.Equal(t, uint8(255), got.R, "faint pixel lost its color (canvas %d)", canvasSize)
	}
}

func TestOptionsClampSize(t *testing.T) {
	o := Options{Size: 1 << 20, Supersample: 64}
	o.normalize()
	assert.Equal(t, MaxSize, o.Size)
	assert.Equal(t, MaxSupersample, o.Supersample)

	o = Options{Size: 100, Supersample: 2}
	o.normalize()
	assert.Equal(t, 100, o.Size)
	assert.Equal(t, 2, o.Supersample)
}
