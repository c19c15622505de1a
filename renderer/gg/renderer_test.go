package ggrenderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/canvasbuilder/paint"
)

func newSurface(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := NewEngine("").NewSurface(w, h)
	require.NoError(t, err)
	return s.(*Surface)
}

func pixel(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestFillAndStrokeKeepSeparateBrushes(t *testing.T) {
	s := newSurface(t, 30, 30)
	ctx := s.ctx
	require.NoError(t, ctx.SetFillStyle(paint.Named("#00ff00")))
	require.NoError(t, ctx.SetStrokeStyle(paint.Named("red")))
	ctx.SetLineWidth(2)
	require.NoError(t, ctx.StrokeRect(5, 5, 20, 20))
	require.NoError(t, ctx.FillRect(10, 10, 10, 10))

	out := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, s.WriteFile(out))
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, pixel(t, out, 15, 15))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, pixel(t, out, 5, 15))
}

func TestDrawImageSubrectangle(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(2, 2, color.RGBA{B: 255, A: 255})
	s := newSurface(t, 10, 10)
	require.NoError(t, s.ctx.DrawImage(src, image.Rect(2, 2, 4, 4), 6, 6))

	out := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, s.WriteFile(out))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, pixel(t, out, 6, 6))
}

func TestStyles(t *testing.T) {
	s := newSurface(t, 4, 4)
	assert.ErrorIs(t, s.ctx.SetFillStyle(paint.Named("nope")), paint.ErrUnknownColor)
	assert.ErrorIs(t, s.ctx.SetFillStyle(paint.Gradient("not a brush")), paint.ErrUnsupportedStyle)
	require.NoError(t, s.ctx.SetStrokeStyle(paint.Pattern(gg.Solid(gg.Red))))
	assert.Equal(t, paint.StylePattern, s.ctx.StrokeStyle().Kind)
}

func TestTextWithRegisteredAndFallbackFonts(t *testing.T) {
	e := NewEngine("")
	require.NoError(t, e.RegisterFont("embed:sans-regular", paint.Font{Family: "GG Sans"}))
	require.NoError(t, e.RegisterFont("embed:sans-regular", paint.Font{Family: "GG Sans"}))
	assert.Error(t, e.RegisterFont("embed:nope", paint.Font{Family: "Nope"}))

	s := newSurface(t, 80, 30)
	require.NoError(t, s.ctx.SetFont(paint.FontDescriptor{Family: "GG Sans", Size: 14}))
	assert.NoError(t, s.ctx.FillText("hi", 2, 20))
	require.NoError(t, s.ctx.SetFont(paint.FontDescriptor{Family: "sans-serif", Size: 14}))
	assert.NoError(t, s.ctx.FillText("hi", 2, 20))
}
