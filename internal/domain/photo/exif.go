package photo

import (
	"bytes"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

const (
	exifTimeLayout = "2006:01:02 15:04:05"
	takenAtLayout  = "2006-01-02T15:04:05"
)

// ReadCapture extracts camera metadata. Missing or malformed EXIF yields a zero Capture.
func ReadCapture(data []byte) (capture Capture) {
	defer func() {
		// goexif can panic on truncated IFDs.
		if recover() != nil {
			capture = Capture{}
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil || x == nil {
		return Capture{}
	}

	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		if raw := stringTag(x, field); raw != "" {
			if t, err := time.Parse(exifTimeLayout, raw); err == nil {
				capture.TakenAt = t.Format(takenAtLayout)
				break
			}
		}
	}
	capture.Make = stringTag(x, exif.Make)
	capture.Model = stringTag(x, exif.Model)

	if tag, err := x.Get(exif.Flash); err == nil {
		if v, err := tag.Int(0); err == nil {
			capture.FlashFired = v&1 == 1
		}
	}
	if _, err := x.Get(exif.GPSInfoIFDPointer); err == nil {
		capture.HasGPS = true
	}
	return capture
}

func stringTag(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(value, "\x00"))
}
