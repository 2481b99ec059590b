// ABOUTME: Cover color service extracts the prominent color of a book cover
// ABOUTME: Uses K-means clustering and caches results for a day

package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/EdlinOrg/prominentcolor"
	_ "golang.org/x/image/webp"

	"bookshelf-api/core/domain"
	coreerrors "bookshelf-api/core/errors"
	"bookshelf-api/core/interfaces"
)

const (
	defaultColorValue = 128
	colorCacheTTL     = 24 * time.Hour
	colorCachePrefix  = "coverColor:"

	// maxCoverBytes bounds the size of a downloaded cover
	maxCoverBytes = 16 << 20

	batchConcurrency = 5
)

// CoverColorService handles color extraction from cover images
type CoverColorService struct {
	deps interfaces.Dependencies
}

// NewCoverColorService creates a new cover color service
func NewCoverColorService(deps interfaces.Dependencies) *CoverColorService {
	return &CoverColorService{deps: deps}
}

// ExtractColor returns the prominent color of the image at imageURL. Images
// that cannot be fetched or decoded yield the default gray, which is cached too
// unless ctx ended first.
func (s *CoverColorService) ExtractColor(ctx context.Context, imageURL string) (*domain.RGBColor, error) {
	if imageURL == "" {
		return DefaultColor(), nil
	}

	if color, err := s.GetCachedColor(ctx, imageURL); err == nil {
		return color, nil
	}

	color, err := s.extractColorFromURL(ctx, imageURL)
	if err != nil {
		s.log().Debug("Failed to extract color from cover", map[string]interface{}{
			"url":   imageURL,
			"error": err.Error(),
		})
		if ctx.Err() != nil {
			return DefaultColor(), nil
		}
		color = DefaultColor()
	}

	if s.deps.Cache != nil {
		data := fmt.Sprintf("%d,%d,%d", color.R, color.G, color.B)
		_ = s.deps.Cache.Set(ctx, colorCachePrefix+imageURL, []byte(data), colorCacheTTL)
	}

	return color, nil
}

// GetCachedColor returns a previously extracted color without computing it
func (s *CoverColorService) GetCachedColor(ctx context.Context, imageURL string) (*domain.RGBColor, error) {
	if imageURL == "" {
		return nil, errors.New("empty image URL")
	}
	if s.deps.Cache == nil {
		return nil, &coreerrors.NotFoundError{Resource: "cover color", ID: imageURL}
	}

	data, err := s.deps.Cache.Get(ctx, colorCachePrefix+imageURL)
	if err != nil {
		return nil, &coreerrors.NotFoundError{Resource: "cover color", ID: imageURL}
	}

	var color domain.RGBColor
	if _, err := fmt.Sscanf(string(data), "%d,%d,%d", &color.R, &color.G, &color.B); err != nil {
		return nil, &coreerrors.NotFoundError{Resource: "cover color", ID: imageURL}
	}
	return &color, nil
}

// ExtractColorBatch extracts colors for many covers with bounded concurrency
func (s *CoverColorService) ExtractColorBatch(ctx context.Context, imageURLs []string) map[string]*domain.RGBColor {
	results := make(map[string]*domain.RGBColor)
	var mu sync.Mutex
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, batchConcurrency)

	for _, u := range imageURLs {
		if u == "" {
			continue
		}
		wg.Add(1)
		go func(imageURL string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				return
			}

			color, err := s.ExtractColor(ctx, imageURL)
			if err != nil {
				return
			}

			mu.Lock()
			results[imageURL] = color
			mu.Unlock()
		}(u)
	}

	wg.Wait()

	s.log().Debug("Completed batch cover color extraction", map[string]interface{}{
		"requested": len(imageURLs),
		"extracted": len(results),
	})

	return results
}

func (s *CoverColorService) extractColorFromURL(ctx context.Context, imageURL string) (color *domain.RGBColor, err error) {
	// prominentcolor panics on some degenerate images
	defer func() {
		if rec := recover(); rec != nil {
			color = nil
			err = fmt.Errorf("panic recovered: %v", rec)
		}
	}()

	parsed, parseErr := url.Parse(imageURL)
	if parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid image URL: %s", imageURL)
	}

	if strings.HasSuffix(strings.ToLower(parsed.Path), ".svg") {
		return nil, errors.New("SVG images are not supported")
	}

	if s.deps.HTTPClient == nil {
		return nil, errors.New("HTTP client not configured")
	}

	resp, err := s.deps.HTTPClient.Get(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body().Close()

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body(), maxCoverBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return ProminentColor(img)
}

// ProminentColor returns the most prominent color of img
func ProminentColor(img image.Image) (*domain.RGBColor, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, errors.New("image has empty bounds")
	}

	nrgba := image.NewNRGBA(bounds)
	draw.Draw(nrgba, bounds, img, bounds.Min, draw.Src)

	colors, err := prominentcolor.KmeansWithAll(prominentcolor.ArgumentDefault, nrgba, prominentcolor.DefaultK, 1, prominentcolor.GetDefaultMasks())
	if err != nil || len(colors) == 0 {
		// Masks drop white, black and green backgrounds; retry without them
		colors, err = prominentcolor.KmeansWithAll(prominentcolor.ArgumentDefault, nrgba, prominentcolor.DefaultK, 1, nil)
		if err != nil || len(colors) == 0 {
			return nil, errors.New("no colors extracted from image")
		}
	}

	return &domain.RGBColor{
		R: uint8(colors[0].Color.R),
		G: uint8(colors[0].Color.G),
		B: uint8(colors[0].Color.B),
	}, nil
}

// DefaultColor is the neutral gray used when a cover has no usable color
func DefaultColor() *domain.RGBColor {
	return &domain.RGBColor{R: defaultColorValue, G: defaultColorValue, B: defaultColorValue}
}

func (s *CoverColorService) log() interfaces.Logger {
	if s.deps.Logger == nil {
		return nopLogger{}
	}
	return s.deps.Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
