package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sahayak-edu/sahayak/internal/cache"
	"github.com/sahayak-edu/sahayak/internal/domain"
	"github.com/sahayak-edu/sahayak/internal/llm"
	"github.com/sahayak-edu/sahayak/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page() domain.UploadedImage {
	return domain.UploadedImage{Name: "page.png", MediaType: "image/png", Data: []byte("png-bytes")}
}

func TestSimulatedExtractor_ReturnsSampleText(t *testing.T) {
	text, err := NewSimulatedExtractor(0).Extract(context.Background(), page())
	require.NoError(t, err)
	assert.Equal(t, SampleText, text)
	assert.Contains(t, text, "Ram has 15 apples")
}

func TestSimulatedExtractor_EmptyImage(t *testing.T) {
	_, err := NewSimulatedExtractor(0).Extract(context.Background(), domain.UploadedImage{MediaType: "image/png"})
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestSimulatedExtractor_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := NewSimulatedExtractor(time.Minute).Extract(ctx, page())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestVisionExtractor_SendsImage(t *testing.T) {
	fake := testutil.NewFakeLLM("```\nChapter 3: Fractions\n```")
	text, err := NewVisionExtractor(fake).Extract(context.Background(), page())
	require.NoError(t, err)
	assert.Equal(t, "Chapter 3: Fractions", text)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, llm.TaskOCR, calls[0].Task)
	require.Len(t, calls[0].Images, 1)
	assert.Equal(t, "image/png", calls[0].Images[0].MIMEType)
}

func TestVisionExtractor_Errors(t *testing.T) {
	_, err := NewVisionExtractor(testutil.NewFailingLLM(llm.ErrUnavailable)).Extract(context.Background(), page())
	assert.ErrorIs(t, err, llm.ErrUnavailable)

	_, err = NewVisionExtractor(testutil.NewFakeLLM("   ")).Extract(context.Background(), page())
	assert.ErrorIs(t, err, ErrNoText)
}

func TestCachingExtractor_HitSkipsInner(t *testing.T) {
	calls := 0
	inner := ExtractorFunc(func(context.Context, domain.UploadedImage) (string, error) {
		calls++
		return "extracted", nil
	})
	c := NewCachingExtractor(inner, cache.NewMemoryClient(10), "test", 0, nil)

	for i := 0; i < 3; i++ {
		text, err := c.Extract(context.Background(), page())
		require.NoError(t, err)
		assert.Equal(t, "extracted", text)
	}
	assert.Equal(t, 1, calls)
}

func TestCachingExtractor_DifferentImagesMiss(t *testing.T) {
	calls := 0
	inner := ExtractorFunc(func(_ context.Context, img domain.UploadedImage) (string, error) {
		calls++
		return string(img.Data), nil
	})
	c := NewCachingExtractor(inner, cache.NewMemoryClient(10), "test", 0, nil)

	a, b := page(), page()
	b.Data = []byte("other")
	_, _ = c.Extract(context.Background(), a)
	text, err := c.Extract(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "other", text)
	assert.Equal(t, 2, calls)
}

func TestCachingExtractor_ErrorsNotCached(t *testing.T) {
	calls := 0
	inner := ExtractorFunc(func(context.Context, domain.UploadedImage) (string, error) {
		calls++
		return "", errors.New("camera blur")
	})
	c := NewCachingExtractor(inner, cache.NewMemoryClient(10), "test", 0, nil)

	_, err := c.Extract(context.Background(), page())
	assert.EqualError(t, err, "camera blur")
	_, err = c.Extract(context.Background(), page())
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

type brokenCache struct{ cache.NoopClient }

func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("conn reset") }

func TestCachingExtractor_CacheFailureDegradesToMiss(t *testing.T) {
	inner := ExtractorFunc(func(context.Context, domain.UploadedImage) (string, error) {
		return "fresh", nil
	})
	c := NewCachingExtractor(inner, brokenCache{}, "test", 0, nil)

	text, err := c.Extract(context.Background(), page())
	require.NoError(t, err)
	assert.Equal(t, "fresh", text)
}

func TestImageHash_Stable(t *testing.T) {
	assert.Equal(t, ImageHash([]byte("a")), ImageHash([]byte("a")))
	assert.NotEqual(t, ImageHash([]byte("a")), ImageHash([]byte("b")))
	assert.Len(t, ImageHash(nil), 64)
}
