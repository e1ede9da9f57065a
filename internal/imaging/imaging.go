package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
)

// Result carries re-encoded image bytes plus the output dimensions.
type Result struct {
	Data   []byte
	Width  int
	Height int
	Format string
}

// Processor applies resize, thumbnail, and filter transforms to image bytes.
type Processor struct {
	maxWidth      int
	maxHeight     int
	jpegQuality   int
	thumbnailSize int
}

// NewProcessor builds a processor from the imaging configuration.
func NewProcessor(cfg config.ImagingConfig) *Processor {
	return &Processor{
		maxWidth:      cfg.MaxWidth,
		maxHeight:     cfg.MaxHeight,
		jpegQuality:   cfg.JPEGQuality,
		thumbnailSize: cfg.ThumbnailSize,
	}
}

// Decode parses image bytes into a pixel buffer we can transform.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", err)
	}
	return img, format, nil
}

// Resize scales the image down to fit within the configured bounds while
// preserving aspect ratio. Images already within bounds are re-encoded as-is.
func (p *Processor) Resize(data []byte) (*Result, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= p.maxWidth && height <= p.maxHeight {
		return p.encode(img, format, p.jpegQuality)
	}

	ratio := min(float64(p.maxWidth)/float64(width), float64(p.maxHeight)/float64(height))
	dstW := max(1, int(float64(width)*ratio))
	dstH := max(1, int(float64(height)*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return p.encode(dst, format, p.jpegQuality)
}

// Thumbnail produces a square, center-cropped thumbnail.
func (p *Processor) Thumbnail(data []byte) (*Result, error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	side := min(bounds.Dx(), bounds.Dy())
	x0 := bounds.Min.X + (bounds.Dx()-side)/2
	y0 := bounds.Min.Y + (bounds.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, p.thumbnailSize, p.thumbnailSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)
	return p.encode(dst, "jpeg", thumbnailQuality)
}

const thumbnailQuality = 75

// Filter decodes the image, applies the named filter, and re-encodes.
func (p *Processor) Filter(data []byte, kind enums.FilterKind) (*Result, error) {
	img, format, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return p.encode(ApplyFilter(img, kind), format, p.jpegQuality)
}

func (p *Processor) encode(img image.Image, format string, quality int) (*Result, error) {
	var buf bytes.Buffer
	outFormat := format
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
	default:
		outFormat = "jpeg"
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
	}
	bounds := img.Bounds()
	return &Result{
		Data:   buf.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: outFormat,
	}, nil
}
