package vision

import (
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/genproto/googleapis/type/color"
)

func TestLabelsToTagsNormalizesAndLimits(t *testing.T) {
	labels := []*visionpb.EntityAnnotation{
		{Description: "Sunset"},
		{Description: "  Beach "},
		{Description: ""},
		{Description: "Ocean"},
	}
	tags := labelsToTags(labels, 2)
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", tags)
	}
	if tags[0] != "sunset" || tags[1] != "beach" {
		t.Fatalf("unexpected tags %v", tags)
	}
}

func TestBestGuessCaption(t *testing.T) {
	web := &visionpb.WebDetection{
		BestGuessLabels: []*visionpb.WebDetection_WebLabel{
			{Label: ""},
			{Label: "golden hour beach"},
		},
	}
	if got := bestGuessCaption(web); got != "golden hour beach" {
		t.Fatalf("unexpected caption %q", got)
	}
	if got := bestGuessCaption(nil); got != "" {
		t.Fatalf("expected empty caption for nil detection, got %q", got)
	}
}

func TestDominantColorsOrderedByPixelFraction(t *testing.T) {
	props := &visionpb.ImageProperties{
		DominantColors: &visionpb.DominantColorsAnnotation{
			Colors: []*visionpb.ColorInfo{
				{Color: &color.Color{Red: 10, Green: 20, Blue: 30}, PixelFraction: 0.1},
				{Color: &color.Color{Red: 200, Green: 100, Blue: 50}, PixelFraction: 0.6},
			},
		},
	}
	colors := dominantColors(props, 5)
	if len(colors) != 2 {
		t.Fatalf("expected 2 colors, got %v", colors)
	}
	if colors[0] != "#c86432" {
		t.Fatalf("expected dominant color first, got %v", colors)
	}
}

func TestMoodFromColors(t *testing.T) {
	bright := &visionpb.ImageProperties{
		DominantColors: &visionpb.DominantColorsAnnotation{
			Colors: []*visionpb.ColorInfo{
				{Color: &color.Color{Red: 240, Green: 240, Blue: 240}, PixelFraction: 1},
			},
		},
	}
	if got := moodFromColors(bright); got != "bright" {
		t.Fatalf("expected bright, got %q", got)
	}

	dark := &visionpb.ImageProperties{
		DominantColors: &visionpb.DominantColorsAnnotation{
			Colors: []*visionpb.ColorInfo{
				{Color: &color.Color{Red: 10, Green: 10, Blue: 10}, PixelFraction: 1},
			},
		},
	}
	if got := moodFromColors(dark); got != "dark" {
		t.Fatalf("expected dark, got %q", got)
	}

	if got := moodFromColors(nil); got != "" {
		t.Fatalf("expected empty mood for nil props, got %q", got)
	}
}
