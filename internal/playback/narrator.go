package playback

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"spirare/internal/logging"
	"spirare/internal/narration"
)

// VoicePlayer plays synthesized clips on the single narration output.
type VoicePlayer interface {
	// Play blocks until clip finishes or ctx is cancelled.
	Play(ctx context.Context, clip narration.Audio) error
	Pause()
	Resume()
}

// Speaker is the narration surface the Machine drives.
type Speaker interface {
	Say(text string, replace bool)
	Pause()
	Resume()
	Stop()
}

type cue struct {
	text string
	gen  uint64
}

// Narrator is a serialized narration queue. At most one worker goroutine
// runs, and only while cues are pending.
type Narrator struct {
	mu       sync.Mutex
	synth    narration.Synthesizer
	voice    VoicePlayer
	logger   *slog.Logger
	gen      uint64
	queue    []cue
	cancel   context.CancelFunc
	running  bool
	closed   bool
	disabled bool
	onCue    func(text string)
	wg       sync.WaitGroup
}

// NarratorOption customizes a Narrator.
type NarratorOption func(*Narrator)

// WithCueObserver registers fn to receive each cue's text as it starts.
func WithCueObserver(fn func(text string)) NarratorOption {
	return func(n *Narrator) { n.onCue = fn }
}

// NewNarrator returns an idle narrator. A nil synth disables audio; a nil
// voice synthesizes but discards clips.
func NewNarrator(synth narration.Synthesizer, voice VoicePlayer, logger *slog.Logger, opts ...NarratorOption) *Narrator {
	if synth == nil {
		synth = narration.Disabled{}
	}
	n := &Narrator{
		synth:  synth,
		voice:  voice,
		logger: logging.NewComponentLogger(logger, "narrator"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Say queues text. With replace, the clip in flight is cancelled and pending
// cues are discarded before text is queued.
func (n *Narrator) Say(text string, replace bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	if replace {
		n.invalidateLocked()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	n.queue = append(n.queue, cue{text: text, gen: n.gen})
	if !n.running {
		n.running = true
		n.wg.Add(1)
		go n.run()
	}
}

// Stop cancels the clip in flight and drops everything queued.
func (n *Narrator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalidateLocked()
}

func (n *Narrator) Pause() {
	if n.voice != nil {
		n.voice.Pause()
	}
}

func (n *Narrator) Resume() {
	if n.voice != nil {
		n.voice.Resume()
	}
}

// Generation returns the current cancellation token.
func (n *Narrator) Generation() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.gen
}

// Wait blocks until the queue has drained.
func (n *Narrator) Wait() {
	n.wg.Wait()
}

// Close stops narration and waits for the worker to exit. Later calls to
// Say are ignored.
func (n *Narrator) Close() {
	n.mu.Lock()
	n.invalidateLocked()
	n.closed = true
	n.mu.Unlock()
	n.wg.Wait()
}

func (n *Narrator) invalidateLocked() {
	n.gen++
	n.queue = nil
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

func (n *Narrator) run() {
	defer n.wg.Done()
	for {
		n.mu.Lock()
		if len(n.queue) == 0 || n.closed {
			n.running = false
			n.mu.Unlock()
			return
		}
		next := n.queue[0]
		n.queue = n.queue[1:]
		ctx, cancel := context.WithCancel(context.Background())
		n.cancel = cancel
		observer := n.onCue
		n.mu.Unlock()

		if observer != nil {
			observer(next.text)
		}
		n.speak(ctx, next)
		cancel()
	}
}

func (n *Narrator) current(gen uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return gen == n.gen
}

func (n *Narrator) speak(ctx context.Context, c cue) {
	clip, err := n.synth.Synthesize(ctx, c.text)
	if err != nil {
		n.synthesisFailed(ctx, err)
		return
	}
	if !n.current(c.gen) {
		n.logger.Debug("dropping stale narration clip", logging.Int64("generation", int64(c.gen)))
		return
	}
	if n.voice == nil {
		return
	}
	if err := n.voice.Play(ctx, clip); err != nil && ctx.Err() == nil {
		logging.WarnWithContext(n.logger, "narration playback failed", "narration_play_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "session continues without this narration"),
		)
	}
}

func (n *Narrator) synthesisFailed(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	if errors.Is(err, narration.ErrDisabled) {
		n.mu.Lock()
		first := !n.disabled
		n.disabled = true
		n.mu.Unlock()
		if first {
			n.logger.Info("narration disabled, showing text only")
		}
		return
	}
	logging.WarnWithContext(n.logger, "narration synthesis failed", "narration_synthesis_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check narration provider settings and connectivity"),
		logging.String(logging.FieldImpact, "session continues without this narration"),
	)
}
