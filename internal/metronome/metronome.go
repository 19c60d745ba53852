// Package metronome produces an audible periodic tick whose pitch follows the
// tempo, plus a beat flag that flips on every tick for visual sync.
package metronome

import (
	"log/slog"
	"sync"
	"time"

	"spirare/internal/clock"
	"spirare/internal/content"
	"spirare/internal/logging"
)

// Sink plays one rendered tone. Errors are logged and otherwise ignored.
type Sink interface {
	PlayTone(wav []byte) error
}

// Metronome is safe for concurrent use.
type Metronome struct {
	mu       sync.Mutex
	sched    clock.Scheduler
	sink     Sink
	logger   *slog.Logger
	minMs    int
	maxMs    int
	periodMs int
	muted    bool
	playing  bool
	beat     bool
	cancel   clock.Cancel
	gen      int
	onBeat   func(active bool)
}

// Option customizes a Metronome.
type Option func(*Metronome)

// WithSink routes tones to s. Without a sink the metronome is silent but
// still flips its beat flag.
func WithSink(s Sink) Option {
	return func(m *Metronome) { m.sink = s }
}

// WithBounds overrides the period range.
func WithBounds(minMs, maxMs int) Option {
	return func(m *Metronome) {
		if minMs > 0 && maxMs > minMs {
			m.minMs, m.maxMs = minMs, maxMs
		}
	}
}

// WithSettings applies a persisted preference.
func WithSettings(s content.MetronomeSettings) Option {
	return func(m *Metronome) {
		m.periodMs = s.PeriodMs
		m.muted = s.IsMuted
	}
}

// WithBeatObserver registers fn to run after every tick.
func WithBeatObserver(fn func(active bool)) Option {
	return func(m *Metronome) { m.onBeat = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Metronome) { m.logger = logging.NewComponentLogger(logger, "metronome") }
}

// New returns a stopped metronome at the default period.
func New(sched clock.Scheduler, opts ...Option) *Metronome {
	m := &Metronome{
		sched:    sched,
		logger:   logging.NewComponentLogger(nil, "metronome"),
		minMs:    content.MinPeriodMs,
		maxMs:    content.MaxPeriodMs,
		periodMs: content.DefaultPeriodMs,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.periodMs = content.ClampPeriod(m.periodMs, m.minMs, m.maxMs)
	return m
}

// Start begins ticking. Starting a running metronome restarts its interval.
func (m *Metronome) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startLocked()
}

func (m *Metronome) startLocked() {
	m.stopLocked()
	m.playing = true
	m.gen++
	gen := m.gen
	m.cancel = m.sched.Every(time.Duration(m.periodMs)*time.Millisecond, func() { m.tick(gen) })
}

// Stop halts ticking and clears the beat flag.
func (m *Metronome) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Metronome) stopLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.playing = false
	m.beat = false
}

// Toggle starts a stopped metronome or stops a running one and reports
// whether it is now playing.
func (m *Metronome) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.stopLocked()
	} else {
		m.startLocked()
	}
	return m.playing
}

// SetPeriod clamps and applies a new period, restarting the interval when
// playing. It returns the applied period.
func (m *Metronome) SetPeriod(ms int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periodMs = content.ClampPeriod(ms, m.minMs, m.maxMs)
	if m.playing {
		m.startLocked()
	}
	return m.periodMs
}

// SetMuted suppresses tones without stopping beats.
func (m *Metronome) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	m.mu.Unlock()
}

func (m *Metronome) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Metronome) BeatActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beat
}

func (m *Metronome) PeriodMs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.periodMs
}

// Frequency returns the tone pitch for the current period.
func (m *Metronome) Frequency() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return FrequencyFor(m.periodMs, m.minMs, m.maxMs)
}

// tick ignores callbacks from an interval that has since been replaced.
func (m *Metronome) tick(gen int) {
	m.mu.Lock()
	if !m.playing || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.beat = !m.beat
	beat := m.beat
	sink := m.sink
	silent := m.muted || sink == nil
	freq := FrequencyFor(m.periodMs, m.minMs, m.maxMs)
	observer := m.onBeat
	m.mu.Unlock()

	if !silent {
		if err := sink.PlayTone(Tone(freq, ToneDuration)); err != nil {
			m.logger.Debug("metronome tone failed", logging.Error(err))
		}
	}
	if observer != nil {
		observer(beat)
	}
}
