// Package ocr turns an uploaded textbook page into plain text.
package ocr

import (
	"context"
	"errors"
	"time"

	"github.com/sahayak-edu/sahayak/internal/domain"
)

var (
	// ErrEmptyImage indicates the uploaded image carried no bytes.
	ErrEmptyImage = errors.New("image is empty")

	// ErrNoText indicates extraction succeeded but produced no text.
	ErrNoText = errors.New("no text found in image")
)

// Extractor converts one image into text. Implementations return a non-empty
// string or an error; callers treat any error as fatal for the run.
type Extractor interface {
	Extract(ctx context.Context, img domain.UploadedImage) (string, error)
}

// DefaultSimulatedDelay mirrors the latency of a hosted OCR round trip.
const DefaultSimulatedDelay = time.Second

// SampleText is the fixed textbook content returned by SimulatedExtractor.
const SampleText = `Sample textbook content about mathematics:

Addition and Subtraction

Addition is the process of combining two or more numbers to get their total or sum.
Example: 5 + 3 = 8

Subtraction is the process of taking away one number from another.
Example: 8 - 3 = 5

Practice Problems:
1. 12 + 8 = ?
2. 25 - 7 = ?
3. 34 + 16 = ?

Word Problems:
Ram has 15 apples. He gives 6 apples to his friend. How many apples does Ram have left?`

// SimulatedExtractor returns SampleText for every image after Delay.
type SimulatedExtractor struct {
	Delay time.Duration
}

func NewSimulatedExtractor(delay time.Duration) *SimulatedExtractor {
	return &SimulatedExtractor{Delay: delay}
}

func (s *SimulatedExtractor) Extract(ctx context.Context, img domain.UploadedImage) (string, error) {
	if len(img.Data) == 0 {
		return "", ErrEmptyImage
	}
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return SampleText, nil
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, img domain.UploadedImage) (string, error)

func (f ExtractorFunc) Extract(ctx context.Context, img domain.UploadedImage) (string, error) {
	return f(ctx, img)
}
