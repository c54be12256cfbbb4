package shipping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackingGeneratorDeterministic(t *testing.T) {
	gen := &TrackingGenerator{
		Prefix:  "SHIP",
		Now:     func() time.Time { return time.UnixMilli(1700000000000) },
		Entropy: func() string { return "ABCD1234" },
	}
	assert.Equal(t, "SHIP-1700000000000-ABCD1234", gen.Next())
}

func TestTrackingGeneratorDefaults(t *testing.T) {
	gen := NewTrackingGenerator("RET")

	a := gen.Next()
	b := gen.Next()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^RET-\d+-[0-9A-F]{8}$`, a)
}
