package enums

import "fmt"

// FilterKind names the image filters a filter batch can apply.
type FilterKind string

const (
	FilterKindGrayscale FilterKind = "grayscale"
	FilterKindSepia     FilterKind = "sepia"
	FilterKindBrighten  FilterKind = "brighten"
	FilterKindDarken    FilterKind = "darken"
	FilterKindSharpen   FilterKind = "sharpen"
	FilterKindBlur      FilterKind = "blur"
)

var validFilterKinds = []FilterKind{
	FilterKindGrayscale,
	FilterKindSepia,
	FilterKindBrighten,
	FilterKindDarken,
	FilterKindSharpen,
	FilterKindBlur,
}

// String returns the literal string for the kind.
func (f FilterKind) String() string {
	return string(f)
}

// IsValid reports whether the kind is known.
func (f FilterKind) IsValid() bool {
	for _, candidate := range validFilterKinds {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFilterKind converts raw input into a FilterKind.
func ParseFilterKind(value string) (FilterKind, error) {
	for _, candidate := range validFilterKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid filter kind %q", value)
}
