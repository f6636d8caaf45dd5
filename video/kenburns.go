package video

// KenBurnsProfile defines a pan/zoom effect as a start and end scale
// factor interpolated linearly over the segment's duration.
type KenBurnsProfile struct {
	Name       string
	StartScale float64
	EndScale   float64
}

var (
	// ZoomIn grabs attention on hook and emotion segments.
	ZoomIn = KenBurnsProfile{Name: "zoom_in", StartScale: 1.0, EndScale: 1.15}
	// SlowZoom is the calm default for expository segments.
	SlowZoom = KenBurnsProfile{Name: "slow_zoom", StartScale: 1.0, EndScale: 1.08}
	// ZoomOut exists for completeness. It is never assigned to the final
	// segment: ending below full cover would expose the frame edge.
	ZoomOut = KenBurnsProfile{Name: "zoom_out", StartScale: 1.15, EndScale: 1.0}
)

// roleProfiles keys the effect on the segment's narrative role.
var roleProfiles = map[string]KenBurnsProfile{
	"hook":    ZoomIn,
	"reason":  SlowZoom,
	"emotion": ZoomIn,
	"cta":     SlowZoom,
}

// ProfileFor returns the effect profile for a segment role, defaulting to
// ZoomIn for unknown roles.
func ProfileFor(role string) KenBurnsProfile {
	if p, ok := roleProfiles[role]; ok {
		return p
	}
	return ZoomIn
}

// ScaleAt returns the scale factor at time t within a segment of the
// given duration (linear interpolation, clamped to the segment bounds).
func (p KenBurnsProfile) ScaleAt(t, duration float64) float64 {
	if duration <= 0 {
		return p.StartScale
	}
	if t <= 0 {
		return p.StartScale
	}
	if t >= duration {
		return p.EndScale
	}
	return p.StartScale + (p.EndScale-p.StartScale)*t/duration
}
