package vision

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/marcosvillarreal/reelstack-backend/pkg/config"
)

// Analysis is the distilled result of annotating one image.
type Analysis struct {
	Tags    []string
	Caption string
	Mood    string
	Colors  []string
}

// Analyzer is the surface batch executors depend on.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*Analysis, error)
}

// Client annotates images through the Cloud Vision API.
type Client struct {
	annotator *vision.ImageAnnotatorClient
	maxTags   int
	maxColors int
}

// NewClient dials the Vision API. When no explicit credentials are set,
// application default credentials apply.
func NewClient(ctx context.Context, cfg config.VisionConfig, gcp config.GCPConfig) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case gcp.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(gcp.CredentialsJSON)))
	case gcp.ApplicationCredentials != "":
		opts = append(opts, option.WithCredentialsFile(gcp.ApplicationCredentials))
	}

	annotator, err := vision.NewImageAnnotatorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	return &Client{
		annotator: annotator,
		maxTags:   cfg.MaxTags,
		maxColors: cfg.MaxColors,
	}, nil
}

// Analyze runs label, web, and color detection over the image bytes.
func (c *Client) Analyze(ctx context.Context, image []byte) (*Analysis, error) {
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: int32(c.maxTags)},
					{Type: visionpb.Feature_WEB_DETECTION},
					{Type: visionpb.Feature_IMAGE_PROPERTIES},
				},
			},
		},
	}

	resp, err := c.annotator.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, errors.New("vision returned no responses")
	}
	annotated := resp.Responses[0]
	if annotated.Error != nil {
		return nil, fmt.Errorf("vision annotation: %s", annotated.Error.Message)
	}

	analysis := &Analysis{
		Tags:   labelsToTags(annotated.LabelAnnotations, c.maxTags),
		Colors: dominantColors(annotated.ImagePropertiesAnnotation, c.maxColors),
	}
	analysis.Caption = bestGuessCaption(annotated.WebDetection)
	analysis.Mood = moodFromColors(annotated.ImagePropertiesAnnotation)
	return analysis, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.annotator.Close()
}

func labelsToTags(labels []*visionpb.EntityAnnotation, limit int) []string {
	tags := make([]string, 0, len(labels))
	for _, label := range labels {
		name := strings.ToLower(strings.TrimSpace(label.GetDescription()))
		if name == "" {
			continue
		}
		tags = append(tags, name)
		if limit > 0 && len(tags) >= limit {
			break
		}
	}
	return tags
}

func bestGuessCaption(web *visionpb.WebDetection) string {
	if web == nil {
		return ""
	}
	for _, guess := range web.GetBestGuessLabels() {
		if label := strings.TrimSpace(guess.GetLabel()); label != "" {
			return label
		}
	}
	return ""
}

func dominantColors(props *visionpb.ImageProperties, limit int) []string {
	if props == nil || props.GetDominantColors() == nil {
		return nil
	}
	colors := append([]*visionpb.ColorInfo(nil), props.GetDominantColors().GetColors()...)
	sort.SliceStable(colors, func(i, j int) bool {
		return colors[i].GetPixelFraction() > colors[j].GetPixelFraction()
	})

	out := make([]string, 0, len(colors))
	for _, info := range colors {
		c := info.GetColor()
		if c == nil {
			continue
		}
		out = append(out, fmt.Sprintf("#%02x%02x%02x", uint8(c.GetRed()), uint8(c.GetGreen()), uint8(c.GetBlue())))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// moodFromColors buckets the weighted brightness of the dominant palette.
func moodFromColors(props *visionpb.ImageProperties) string {
	if props == nil || props.GetDominantColors() == nil {
		return ""
	}
	var weighted, total float64
	for _, info := range props.GetDominantColors().GetColors() {
		c := info.GetColor()
		if c == nil {
			continue
		}
		luma := 0.299*float64(c.GetRed()) + 0.587*float64(c.GetGreen()) + 0.114*float64(c.GetBlue())
		fraction := float64(info.GetPixelFraction())
		weighted += luma * fraction
		total += fraction
	}
	if total == 0 {
		return ""
	}
	switch luma := weighted / total; {
	case luma >= 190:
		return "bright"
	case luma >= 120:
		return "balanced"
	case luma >= 60:
		return "moody"
	default:
		return "dark"
	}
}
