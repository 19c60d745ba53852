package content

const (
	MinPeriodMs     = 600
	MaxPeriodMs     = 1800
	DefaultPeriodMs = 1000
)

// MetronomeSettings is the persisted metronome preference.
type MetronomeSettings struct {
	PeriodMs int  `json:"periodMs" yaml:"periodMs" bson:"periodMs"`
	IsMuted  bool `json:"isMuted" yaml:"isMuted" bson:"isMuted"`
}

func DefaultMetronomeSettings() MetronomeSettings {
	return MetronomeSettings{PeriodMs: DefaultPeriodMs}
}

// ClampPeriod bounds ms to [lo, hi]. A non-positive ms selects the default
// period before clamping.
func ClampPeriod(ms, lo, hi int) int {
	if ms <= 0 {
		ms = DefaultPeriodMs
	}
	return min(max(ms, lo), hi)
}

// Clamped returns a copy with the period bounded to the standard range.
func (m MetronomeSettings) Clamped() MetronomeSettings {
	m.PeriodMs = ClampPeriod(m.PeriodMs, MinPeriodMs, MaxPeriodMs)
	return m
}
