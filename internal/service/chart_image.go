package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

const (
	MaxChartImages    = 4
	MaxChartImageSize = 5 * 1024 * 1024 // 5MB
	MinChartWidth     = 50
	MinChartHeight    = 50
	ChartImageWidth   = 800
	MaxChartPixels    = 4096 * 4096
)

var (
	ErrTooManyCharts      = errors.New("at most 4 chart images are allowed")
	ErrChartTooLarge      = errors.New("chart image too large. Maximum size is 5MB")
	ErrInvalidChartImage  = errors.New("invalid chart image. Supported: PNG, JPEG")
	ErrChartTooSmall      = errors.New("chart image too small. Minimum 50x50 pixels")
	ErrChartTooManyPixels = errors.New("chart image dimensions too large. Maximum 4096x4096 pixels")
)

// allowedChartExtensions lists accepted upload extensions
var allowedChartExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// ChartImage is a chart captured by the client for embedding into a report
type ChartImage struct {
	Name string
	Data []byte
}

// PrepareChartImages validates the images and normalises each to a PNG of
// ChartImageWidth pixels wide. Images are processed concurrently; the output
// keeps the input order.
func PrepareChartImages(ctx context.Context, images []ChartImage) ([]ChartImage, error) {
	if len(images) > MaxChartImages {
		return nil, ErrTooManyCharts
	}

	out := make([]ChartImage, len(images))
	g, ctx := errgroup.WithContext(ctx)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := normaliseChart(img)
			if err != nil {
				return fmt.Errorf("chart %q: %w", img.Name, err)
			}
			out[i] = ChartImage{Name: img.Name, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func normaliseChart(img ChartImage) ([]byte, error) {
	if len(img.Data) > MaxChartImageSize {
		return nil, ErrChartTooLarge
	}
	if ext := strings.ToLower(filepath.Ext(img.Name)); ext != "" && !allowedChartExtensions[ext] {
		return nil, ErrInvalidChartImage
	}

	// Check the header first; a small file can declare a huge canvas
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, ErrInvalidChartImage
	}
	if cfg.Width < MinChartWidth || cfg.Height < MinChartHeight {
		return nil, ErrChartTooSmall
	}
	if cfg.Width*cfg.Height > MaxChartPixels {
		return nil, ErrChartTooManyPixels
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, ErrInvalidChartImage
	}
	bounds := decoded.Bounds()

	if bounds.Dx() != ChartImageWidth {
		// Keep aspect ratio
		decoded = imaging.Resize(decoded, ChartImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, decoded, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
