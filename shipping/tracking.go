package shipping

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TrackingGenerator produces tracking identifiers from a millisecond
// timestamp plus a random suffix. Clock and entropy are injectable so tests
// get deterministic output; the store's unique index catches the residual
// collision chance.
type TrackingGenerator struct {
	Prefix  string
	Now     func() time.Time
	Entropy func() string
}

func NewTrackingGenerator(prefix string) *TrackingGenerator {
	return &TrackingGenerator{
		Prefix: prefix,
		Now:    time.Now,
		Entropy: func() string {
			return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
		},
	}
}

func (g *TrackingGenerator) Next() string {
	return fmt.Sprintf("%s-%d-%s", g.Prefix, g.Now().UnixMilli(), g.Entropy())
}
