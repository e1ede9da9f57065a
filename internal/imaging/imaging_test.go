package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
)

func testProcessor() *Processor {
	return NewProcessor(config.ImagingConfig{
		MaxWidth:      1920,
		MaxHeight:     1080,
		JPEGQuality:   85,
		ThumbnailSize: 300,
	})
}

func solidJPEG(t *testing.T, width, height int, fill color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestResizeScalesDownPreservingAspectRatio(t *testing.T) {
	p := testProcessor()
	data := solidJPEG(t, 3840, 2160, color.RGBA{R: 200, G: 30, B: 30, A: 255})

	result, err := p.Resize(data)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if result.Width != 1920 || result.Height != 1080 {
		t.Fatalf("expected 1920x1080, got %dx%d", result.Width, result.Height)
	}
	if result.Format != "jpeg" {
		t.Fatalf("expected jpeg output, got %s", result.Format)
	}
}

func TestResizeLeavesSmallImagesUnscaled(t *testing.T) {
	p := testProcessor()
	data := solidJPEG(t, 800, 600, color.RGBA{R: 30, G: 200, B: 30, A: 255})

	result, err := p.Resize(data)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if result.Width != 800 || result.Height != 600 {
		t.Fatalf("expected 800x600, got %dx%d", result.Width, result.Height)
	}
}

func TestThumbnailIsSquare(t *testing.T) {
	p := testProcessor()
	data := solidJPEG(t, 1200, 400, color.RGBA{R: 30, G: 30, B: 200, A: 255})

	result, err := p.Thumbnail(data)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if result.Width != 300 || result.Height != 300 {
		t.Fatalf("expected 300x300, got %dx%d", result.Width, result.Height)
	}
}

func TestResizeRejectsGarbage(t *testing.T) {
	p := testProcessor()
	if _, err := p.Resize([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestGrayscaleFlattensChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 250, G: 20, B: 20, A: 255})
		}
	}

	out := ApplyFilter(img, enums.FilterKindGrayscale)
	r, g, b, _ := out.At(2, 2).RGBA()
	if r != g || g != b {
		t.Fatalf("expected equal channels, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestSepiaTintsWarm(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}

	out := ApplyFilter(img, enums.FilterKindSepia)
	r, g, b, _ := out.At(1, 1).RGBA()
	if !(r > g && g > b) {
		t.Fatalf("expected r > g > b for sepia, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}
}

func TestBrightenAndDarken(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 100, G: 100, B: 100, A: 255})

	bright := ApplyFilter(img, enums.FilterKindBrighten)
	r, _, _, _ := bright.At(0, 0).RGBA()
	if uint8(r>>8) != 130 {
		t.Fatalf("expected brighten to 130, got %d", r>>8)
	}

	dark := ApplyFilter(img, enums.FilterKindDarken)
	r, _, _, _ = dark.At(0, 0).RGBA()
	if uint8(r>>8) != 70 {
		t.Fatalf("expected darken to 70, got %d", r>>8)
	}
}

func TestUnknownFilterReturnsImageUnchanged(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	out := ApplyFilter(img, enums.FilterKind("vignette"))
	if out != image.Image(img) {
		t.Fatal("expected the same image back for an unknown filter")
	}
}

func TestBlurSmoothsEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	// Left half white, right half black.
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			c := color.RGBA{A: 255}
			if x < 4 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}

	out := ApplyFilter(img, enums.FilterKindBlur)
	r, _, _, _ := out.At(4, 4).RGBA()
	v := uint8(r >> 8)
	if v == 0 || v == 255 {
		t.Fatalf("expected blurred edge pixel between extremes, got %d", v)
	}
}
