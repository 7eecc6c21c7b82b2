package photo

const (
	TagLandscape = "landscape"
	TagPortrait  = "portrait"
	TagSquare    = "square"
	TagFlash     = "flash"
	TagGPS       = "gps"
)

// orientationSlack keeps nearly square images square.
const orientationSlack = 1.05

// DeriveTags computes the tag set from image geometry and capture metadata.
func DeriveTags(width, height int, capture Capture) []string {
	w, h := float64(width), float64(height)
	tags := make([]string, 0, 3)
	switch {
	case w > h*orientationSlack:
		tags = append(tags, TagLandscape)
	case h > w*orientationSlack:
		tags = append(tags, TagPortrait)
	default:
		tags = append(tags, TagSquare)
	}
	if capture.FlashFired {
		tags = append(tags, TagFlash)
	}
	if capture.HasGPS {
		tags = append(tags, TagGPS)
	}
	return tags
}

// HasTag reports whether p carries tag.
func (p Photo) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
