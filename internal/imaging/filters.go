package imaging

import (
	"image"

	"github.com/marcosvillarreal/reelstack-backend/pkg/enums"
)

// ApplyFilter renders the named filter over the image. Unknown filter names
// leave the image unchanged.
func ApplyFilter(img image.Image, kind enums.FilterKind) image.Image {
	switch kind {
	case enums.FilterKindGrayscale:
		return mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) {
			l := luminance(r, g, b)
			return l, l, l
		})
	case enums.FilterKindSepia:
		return mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) {
			l := float64(luminance(r, g, b))
			return clamp8(l * 1.07), clamp8(l * 0.74), clamp8(l * 0.43)
		})
	case enums.FilterKindBrighten:
		return mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) {
			return scale8(r, 1.3), scale8(g, 1.3), scale8(b, 1.3)
		})
	case enums.FilterKindDarken:
		return mapPixels(img, func(r, g, b uint8) (uint8, uint8, uint8) {
			return scale8(r, 0.7), scale8(g, 0.7), scale8(b, 0.7)
		})
	case enums.FilterKindSharpen:
		return convolve(img, sharpenKernel, 1)
	case enums.FilterKindBlur:
		return boxBlur(img, 2)
	default:
		return img
	}
}

// luminance matches the ITU-R 601 weights used by common L-mode conversions.
func luminance(r, g, b uint8) uint8 {
	return clamp8(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
}

func mapPixels(img image.Image, fn func(r, g, b uint8) (uint8, uint8, uint8)) *image.RGBA {
	src := toRGBA(img)
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := src.PixOffset(x, y)
			r, g, b := fn(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			j := dst.PixOffset(x, y)
			dst.Pix[j], dst.Pix[j+1], dst.Pix[j+2], dst.Pix[j+3] = r, g, b, src.Pix[i+3]
		}
	}
	return dst
}

var sharpenKernel = [9]float64{
	0, -1, 0,
	-1, 5, -1,
	0, -1, 0,
}

func convolve(img image.Image, kernel [9]float64, divisor float64) *image.RGBA {
	src := toRGBA(img)
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	copy(dst.Pix, src.Pix)

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			var sumR, sumG, sumB float64
			k := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					i := src.PixOffset(x+dx, y+dy)
					w := kernel[k]
					sumR += w * float64(src.Pix[i])
					sumG += w * float64(src.Pix[i+1])
					sumB += w * float64(src.Pix[i+2])
					k++
				}
			}
			j := dst.PixOffset(x, y)
			dst.Pix[j] = clamp8(sumR / divisor)
			dst.Pix[j+1] = clamp8(sumG / divisor)
			dst.Pix[j+2] = clamp8(sumB / divisor)
		}
	}
	return dst
}

func boxBlur(img image.Image, radius int) *image.RGBA {
	src := toRGBA(img)
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var sumR, sumG, sumB, sumA, count float64
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					nx, ny := x+dx, y+dy
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					i := src.PixOffset(nx, ny)
					sumR += float64(src.Pix[i])
					sumG += float64(src.Pix[i+1])
					sumB += float64(src.Pix[i+2])
					sumA += float64(src.Pix[i+3])
					count++
				}
			}
			j := dst.PixOffset(x, y)
			dst.Pix[j] = clamp8(sumR / count)
			dst.Pix[j+1] = clamp8(sumG / count)
			dst.Pix[j+2] = clamp8(sumB / count)
			dst.Pix[j+3] = clamp8(sumA / count)
		}
	}
	return dst
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func scale8(v uint8, factor float64) uint8 {
	return clamp8(float64(v) * factor)
}
