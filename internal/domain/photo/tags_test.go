package photo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		capture       Capture
		want          []string
	}{
		{"landscape", 1920, 1080, Capture{}, []string{TagLandscape}},
		{"portrait", 1080, 1920, Capture{}, []string{TagPortrait}},
		{"square", 500, 500, Capture{}, []string{TagSquare}},
		{"within slack is square", 1040, 1000, Capture{}, []string{TagSquare}},
		{"just past slack is landscape", 1051, 1000, Capture{}, []string{TagLandscape}},
		{"flash and gps", 1920, 1080, Capture{FlashFired: true, HasGPS: true}, []string{TagLandscape, TagFlash, TagGPS}},
		{"gps only", 500, 500, Capture{HasGPS: true, Make: "Canon"}, []string{TagSquare, TagGPS}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveTags(tt.width, tt.height, tt.capture))
		})
	}
}

func TestDeriveTagsIsDeterministic(t *testing.T) {
	capture := Capture{FlashFired: true}
	assert.Equal(t, DeriveTags(1920, 1080, capture), DeriveTags(1920, 1080, capture))
}

func TestDeterministicID(t *testing.T) {
	a := DeterministicID("uploads/photos/cat.jpg")
	b := DeterministicID("uploads/photos/cat.jpg")
	c := DeterministicID("uploads/photos/dog.jpg")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestRandomID(t *testing.T) {
	a := RandomID("uploads/photos/cat.jpg")
	b := RandomID("uploads/photos/cat.jpg")
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestIDFuncFor(t *testing.T) {
	key := "uploads/photos/cat.jpg"
	assert.Equal(t, DeterministicID(key), IDFuncFor(IDStrategyDeterministic)(key))
	assert.NotEqual(t, DeterministicID(key), IDFuncFor("")(key))
	assert.NotEqual(t, DeterministicID(key), IDFuncFor("unknown")(key))
	assert.NotEqual(t, IDFuncFor(IDStrategyRandom)(key), IDFuncFor(IDStrategyRandom)(key))
}
