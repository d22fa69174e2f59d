package domain

import "fmt"

// AspectRatio is the declared output frame shape for a generated video.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
)

// ParseAspectRatio validates a user-supplied aspect ratio. Only the two
// shapes the generation service accepts are allowed.
func ParseAspectRatio(raw string) (AspectRatio, error) {
	switch AspectRatio(raw) {
	case AspectLandscape, AspectPortrait:
		return AspectRatio(raw), nil
	case "":
		return AspectLandscape, nil
	default:
		return "", fmt.Errorf("%w: aspect ratio %q (want 16:9 or 9:16)", ErrInvalidInput, raw)
	}
}

func (a AspectRatio) String() string {
	return string(a)
}
