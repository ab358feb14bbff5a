package ingest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.Set(x, 10, color.Black)
	}
	return img
}

func encode(t *testing.T, format string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, sampleImage())
	case "jpeg":
		err = jpeg.Encode(&buf, sampleImage(), nil)
	case "gif":
		err = gif.Encode(&buf, sampleImage(), nil)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

type fakeRenderer struct {
	name  string
	img   image.Image
	err   error
	calls int
}

func (f *fakeRenderer) Name() string { return f.name }

func (f *fakeRenderer) RenderFirstPage(context.Context, []byte) (image.Image, error) {
	f.calls++
	return f.img, f.err
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func TestLoadDecodesImages(t *testing.T) {
	loader := NewLoader(nil, 0)
	for _, tc := range []struct {
		format   string
		declared string
	}{
		{"png", "image/png"},
		{"jpeg", "image/jpeg"},
		{"jpeg", "image/jpg"},
		{"gif", "image/gif"},
		{"png", ""},
		{"jpeg", "application/octet-stream"},
	} {
		t.Run(tc.format+"/"+tc.declared, func(t *testing.T) {
			img, err := loader.Load(context.Background(), tc.declared, encode(t, tc.format))
			require.NoError(t, err)
			assert.Equal(t, 40, img.Bounds().Dx())
			assert.Equal(t, 20, img.Bounds().Dy())
		})
	}
}

func TestLoadRejectsUnsupportedTypes(t *testing.T) {
	loader := NewLoader(nil, 0)

	_, err := loader.Load(context.Background(), "text/plain", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = loader.Load(context.Background(), "image/webp", encode(t, "png"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	// sniffed text is still text
	_, err = loader.Load(context.Background(), "", []byte("just some words"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLoadRejectsCorruptImages(t *testing.T) {
	loader := NewLoader(nil, 0)

	_, err := loader.Load(context.Background(), "image/png", []byte("not a png"))
	assert.ErrorIs(t, err, ErrCorruptInput)

	_, err = loader.Load(context.Background(), "image/jpeg", nil)
	assert.ErrorIs(t, err, ErrCorruptInput)
}

func TestLoadEnforcesSizeLimit(t *testing.T) {
	loader := NewLoader(nil, 16)

	_, err := loader.Load(context.Background(), "image/png", encode(t, "png"))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = loader.ReadAll(strings.NewReader(strings.Repeat("x", 17)))
	assert.ErrorIs(t, err, ErrTooLarge)

	data, err := loader.ReadAll(strings.NewReader(strings.Repeat("x", 16)))
	require.NoError(t, err)
	assert.Len(t, data, 16)
	assert.EqualValues(t, 16, loader.Limit())

	unlimited := NewLoader(nil, -1)
	assert.Zero(t, unlimited.Limit())
	data, err = unlimited.ReadAll(strings.NewReader(strings.Repeat("x", 64)))
	require.NoError(t, err)
	assert.Len(t, data, 64)
}

func TestResolveType(t *testing.T) {
	assert.Equal(t, TypePNG, ResolveType("image/png; charset=binary", nil))
	assert.Equal(t, TypeJPEG, ResolveType("IMAGE/JPG", nil))
	assert.Equal(t, TypePNG, ResolveType("", encode(t, "png")))
	assert.Equal(t, TypePDF, ResolveType("application/octet-stream", pdfBytes))
	assert.True(t, Allowed(TypeGIF))
	assert.False(t, Allowed("image/tiff"))
}

func TestLoadRendersFirstPDFPage(t *testing.T) {
	page := sampleImage()
	primary := &fakeRenderer{name: "primary", err: errors.New("cannot open")}
	fallback := &fakeRenderer{name: "fallback", img: page}
	loader := NewLoader(ChainRenderer{primary, fallback}, 0)

	img, err := loader.Load(context.Background(), "application/pdf", pdfBytes)
	require.NoError(t, err)
	assert.Same(t, page, img)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestLoadPDFRenderersExhausted(t *testing.T) {
	loader := NewLoader(ChainRenderer{
		&fakeRenderer{name: "a", err: errors.New("a failed")},
		&fakeRenderer{name: "b", err: errors.New("b failed")},
	}, 0)

	_, err := loader.Load(context.Background(), "", pdfBytes)
	require.ErrorIs(t, err, ErrCorruptInput)
	assert.Contains(t, err.Error(), "a failed")
	assert.Contains(t, err.Error(), "b failed")

	_, err = NewLoader(nil, 0).Load(context.Background(), TypePDF, pdfBytes)
	assert.ErrorIs(t, err, ErrCorruptInput)

	_, err = ChainRenderer{}.RenderFirstPage(context.Background(), pdfBytes)
	assert.Error(t, err)
}

func TestPopplerRendererMissingBinary(t *testing.T) {
	r := &PopplerRenderer{Binary: "pdftoppm-definitely-not-installed", DPI: PopplerDPI}
	_, err := r.RenderFirstPage(context.Background(), pdfBytes)
	assert.Error(t, err)
}

func TestFitzRendererRejectsGarbage(t *testing.T) {
	_, err := NewFitzRenderer().RenderFirstPage(context.Background(), []byte("garbage"))
	assert.Error(t, err)
}
