package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, height/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// withDeclaredSize rewrites the IHDR dimensions of a PNG without adding pixel data
func withDeclaredSize(t *testing.T, data []byte, width, height uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], width)
	binary.BigEndian.PutUint32(out[20:24], height)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestPrepareChartImages_Resizes(t *testing.T) {
	images := []ChartImage{
		{Name: "trend.png", Data: testPNG(t, 400, 200)},
		{Name: "breakdown.png", Data: testPNG(t, 1600, 1600)},
	}

	out, err := PrepareChartImages(context.Background(), images)
	require.NoError(t, err)
	require.Len(t, out, 2)

	first, _, err := image.Decode(bytes.NewReader(out[0].Data))
	require.NoError(t, err)
	assert.Equal(t, ChartImageWidth, first.Bounds().Dx())
	assert.Equal(t, 400, first.Bounds().Dy())
	assert.Equal(t, "trend.png", out[0].Name)

	second, _, err := image.Decode(bytes.NewReader(out[1].Data))
	require.NoError(t, err)
	assert.Equal(t, ChartImageWidth, second.Bounds().Dy())
}

func TestPrepareChartImages_Errors(t *testing.T) {
	valid := testPNG(t, 100, 100)

	tests := []struct {
		name    string
		images  []ChartImage
		wantErr error
	}{
		{"too many", []ChartImage{{"a.png", valid}, {"b.png", valid}, {"c.png", valid}, {"d.png", valid}, {"e.png", valid}}, ErrTooManyCharts},
		{"not an image", []ChartImage{{"a.png", []byte("hello")}}, ErrInvalidChartImage},
		{"bad extension", []ChartImage{{"a.gif", valid}}, ErrInvalidChartImage},
		{"too small", []ChartImage{{"a.png", testPNG(t, 20, 20)}}, ErrChartTooSmall},
		{"too large", []ChartImage{{"a.png", make([]byte, MaxChartImageSize+1)}}, ErrChartTooLarge},
		{"huge canvas", []ChartImage{{"a.png", withDeclaredSize(t, valid, 20000, 20000)}}, ErrChartTooManyPixels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PrepareChartImages(context.Background(), tt.images)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPrepareChartImages_Empty(t *testing.T) {
	out, err := PrepareChartImages(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
