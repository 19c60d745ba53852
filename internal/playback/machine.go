package playback

import (
	"log/slog"
	"sync"
	"time"

	"spirare/internal/clock"
	"spirare/internal/crossfade"
	"spirare/internal/logging"
)

// TickInterval is the countdown resolution.
const TickInterval = time.Second

const subscriberBuffer = 16

// Metronome is the tick source the machine starts and stops.
type Metronome interface {
	Start()
	Stop()
	Playing() bool
}

// Fader is the background-track surface the machine drives.
type Fader interface {
	PlayTrack(t *crossfade.Track)
	PauseTrack()
	ResumeTrack()
	Stop()
}

type silentSpeaker struct{}

func (silentSpeaker) Say(string, bool) {}
func (silentSpeaker) Pause()           {}
func (silentSpeaker) Resume()          {}
func (silentSpeaker) Stop()            {}

type silentMetronome struct{ playing bool }

func (m *silentMetronome) Start()        { m.playing = true }
func (m *silentMetronome) Stop()         { m.playing = false }
func (m *silentMetronome) Playing() bool { return m.playing }

type silentFader struct{}

func (silentFader) PlayTrack(*crossfade.Track) {}
func (silentFader) PauseTrack()                {}
func (silentFader) ResumeTrack()               {}
func (silentFader) Stop()                      {}

// Machine owns one walkthrough. All methods are safe for concurrent use.
type Machine struct {
	mu      sync.Mutex
	sched   clock.Scheduler
	script  Script
	speaker Speaker
	metro   Metronome
	fader   Fader
	logger  *slog.Logger

	state     State
	stage     int
	substep   int
	remaining time.Duration
	total     time.Duration

	timer    clock.Cancel
	timerGen int

	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

// MachineOption customizes a Machine.
type MachineOption func(*Machine)

func WithSpeaker(s Speaker) MachineOption {
	return func(m *Machine) {
		if s != nil {
			m.speaker = s
		}
	}
}

func WithMetronome(mt Metronome) MachineOption {
	return func(m *Machine) {
		if mt != nil {
			m.metro = mt
		}
	}
}

func WithFader(f Fader) MachineOption {
	return func(m *Machine) {
		if f != nil {
			m.fader = f
		}
	}
}

func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logging.NewComponentLogger(logger, "playback")
	}
}

// NewMachine validates script and returns a machine in NotStarted.
func NewMachine(script Script, sched clock.Scheduler, opts ...MachineOption) (*Machine, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		sched = clock.System{}
	}
	m := &Machine{
		sched:   sched,
		script:  script,
		speaker: silentSpeaker{},
		metro:   &silentMetronome{},
		fader:   silentFader{},
		logger:  logging.NewComponentLogger(nil, "playback"),
		subs:    make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Script returns the walkthrough being played.
func (m *Machine) Script() Script {
	return m.script
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe returns a channel receiving a Snapshot after every transition.
// Slow readers only lose intermediate snapshots; the latest one is always
// delivered. The channel closes when cancel is called or the machine closes.
func (m *Machine) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Snapshot, subscriberBuffer)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	m.nextSub++
	id := m.nextSub
	m.subs[id] = ch
	ch <- m.snapshotLocked()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if sub, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(sub)
			}
		})
	}
}

// Start tears down any previous run and begins at stage 0, substep 0.
func (m *Machine) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.startLocked()
	m.publishLocked()
}

// Tick counts one TickInterval down while Running and advances when the
// substep's time runs out.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickLocked()
}

// AdvanceSubstep moves to the next substep, the next stage, or FinalStage.
// It reports whether the machine moved.
func (m *Machine) AdvanceSubstep() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Running && m.state != Paused {
		return false
	}
	m.advanceLocked()
	m.publishLocked()
	return true
}

// Skip advances on demand exactly as an expired countdown would.
func (m *Machine) Skip() bool {
	return m.AdvanceSubstep()
}

// TogglePause switches between Running and Paused and returns the resulting
// state. It has no effect in NotStarted or FinalStage.
func (m *Machine) TogglePause() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Running:
		m.stopTimerLocked()
		m.metro.Stop()
		m.speaker.Pause()
		m.fader.PauseTrack()
		m.state = Paused
	case Paused:
		m.speaker.Resume()
		m.fader.ResumeTrack()
		m.metro.Start()
		m.startTimerLocked()
		m.state = Running
	default:
		return m.state
	}
	m.logger.Debug("playback toggled", logging.String("state", m.state.String()))
	m.publishLocked()
	return m.state
}

// Finish tears everything down and returns to NotStarted.
func (m *Machine) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finishLocked()
	m.publishLocked()
}

// Restart is Finish followed by Start.
func (m *Machine) Restart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.finishLocked()
	m.startLocked()
	m.publishLocked()
}

// Close finishes the run and closes every subscription. The machine ignores
// further Start and Restart calls.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.finishLocked()
	m.publishLocked()
	m.closed = true
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
}

func (m *Machine) startLocked() {
	m.teardownLocked()
	m.state = Running
	m.stage, m.substep = 0, 0
	m.resetCountdownLocked()
	m.announceStageLocked(true)
	m.fader.PlayTrack(m.currentStage().Track)
	m.metro.Start()
	m.startTimerLocked()
	m.logger.Info("meditation started",
		logging.String(logging.FieldCategory, m.script.Category),
		logging.Int("stages", len(m.script.Stages)),
		logging.Duration("duration", m.script.Duration()),
	)
}

func (m *Machine) finishLocked() {
	wasActive := m.state.Active()
	m.teardownLocked()
	m.state = NotStarted
	m.stage, m.substep = 0, 0
	m.remaining, m.total = 0, 0
	if wasActive {
		m.logger.Info("meditation finished", logging.String(logging.FieldCategory, m.script.Category))
	}
}

// teardownLocked stops every owned resource. A paused voice and track are
// resumed first so the next run does not inherit the pause.
func (m *Machine) teardownLocked() {
	m.resumeOutputsLocked()
	m.stopTimerLocked()
	m.metro.Stop()
	m.speaker.Stop()
	m.fader.Stop()
}

func (m *Machine) tickLocked() {
	if m.state != Running {
		return
	}
	m.remaining -= TickInterval
	if m.remaining <= 0 {
		m.advanceLocked()
	}
	m.publishLocked()
}

func (m *Machine) advanceLocked() {
	stage := m.currentStage()
	switch {
	case m.substep < len(stage.Substeps)-1:
		m.substep++
		m.resetCountdownLocked()
		m.speaker.Say(m.currentSubstep().Text, true)
	case m.stage < len(m.script.Stages)-1:
		replace := true
		if stage.Outro != "" {
			m.speaker.Say(stage.Outro, true)
			replace = false
		}
		m.stage++
		m.substep = 0
		m.resetCountdownLocked()
		m.announceStageLocked(replace)
		m.fader.PlayTrack(m.currentStage().Track)
		m.logger.Debug("stage advanced",
			logging.String(logging.FieldStage, string(m.currentStage().Name)),
			logging.Int("stage_index", m.stage),
		)
	default:
		m.enterFinalStageLocked()
	}
}

func (m *Machine) enterFinalStageLocked() {
	m.resumeOutputsLocked()
	m.fader.PlayTrack(nil)
	m.stopTimerLocked()
	m.state = FinalStage
	m.remaining, m.total = 0, 0
	m.speaker.Say(CompletionNarration, true)
	if !m.metro.Playing() {
		m.metro.Start()
	}
	m.logger.Info("meditation reached final stage", logging.String(logging.FieldCategory, m.script.Category))
}

func (m *Machine) resumeOutputsLocked() {
	if m.state != Paused {
		return
	}
	m.speaker.Resume()
	m.fader.ResumeTrack()
}

// announceStageLocked speaks the stage intro, if any, followed by the first
// substep's text.
func (m *Machine) announceStageLocked(replace bool) {
	stage := m.currentStage()
	if stage.Intro != "" {
		m.speaker.Say(stage.Intro, replace)
		replace = false
	}
	m.speaker.Say(m.currentSubstep().Text, replace)
}

func (m *Machine) resetCountdownLocked() {
	m.total = m.currentSubstep().Duration
	m.remaining = m.total
}

func (m *Machine) startTimerLocked() {
	m.stopTimerLocked()
	gen := m.timerGen
	m.timer = m.sched.Every(TickInterval, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if gen != m.timerGen {
			return
		}
		m.tickLocked()
	})
}

func (m *Machine) stopTimerLocked() {
	m.timerGen++
	if m.timer != nil {
		m.timer()
		m.timer = nil
	}
}

func (m *Machine) currentStage() StageScript {
	return m.script.Stages[m.stage]
}

func (m *Machine) currentSubstep() Substep {
	return m.script.Stages[m.stage].Substeps[m.substep]
}

func (m *Machine) snapshotLocked() Snapshot {
	stage := m.currentStage()
	sub := m.currentSubstep()
	snap := Snapshot{
		State:        m.state,
		Category:     m.script.Category,
		Title:        m.script.Title,
		StageIndex:   m.stage,
		StageCount:   len(m.script.Stages),
		SubstepIndex: m.substep,
		SubstepCount: len(stage.Substeps),
		Stage:        stage.Name,
		StageTitle:   stage.Title,
		Practice:     sub.Practice,
		Text:         sub.Text,
		Remaining:    m.remaining,
		Total:        m.total,
	}
	if m.state == FinalStage {
		snap.Text = CompletionNarration
	}
	if m.state.Active() && m.state != FinalStage && stage.Track != nil {
		snap.TrackSrc = stage.Track.Src
	}
	return snap
}

// publishLocked delivers the current snapshot without blocking. A full
// subscriber drops its oldest pending snapshot.
func (m *Machine) publishLocked() {
	if len(m.subs) == 0 {
		return
	}
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
