package crossfade

import (
	"log/slog"
	"sync"
	"time"

	"spirare/internal/clock"
	"spirare/internal/logging"
)

// Player is the single audio element the fader drives. Play starts looping
// src from silence; it may fail, for example when the output device rejects
// playback.
type Player interface {
	Play(src string) error
	SetVolume(v float64)
	Pause()
	Resume()
	Stop()
}

// Fader owns one Player and serializes track transitions on it. A newer
// transition always cancels a fade in flight.
type Fader struct {
	mu      sync.Mutex
	sched   clock.Scheduler
	player  Player
	logger  *slog.Logger
	playing *Track
	target  *Track
	volume  float64
	fade    clock.Cancel
	gen     int
}

// NewFader returns an idle Fader.
func NewFader(sched clock.Scheduler, player Player, logger *slog.Logger) *Fader {
	return &Fader{
		sched:  sched,
		player: player,
		logger: logging.NewComponentLogger(logger, "crossfade"),
	}
}

// PlayTrack transitions to t. A nil t fades out and stops the current track.
// Requesting the track that is already playing or already being faded to is
// a no-op. Otherwise the current track fades out over its own fade-out, then
// t starts at volume 0 and fades in to its target volume.
func (f *Fader) PlayTrack(t *Track) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if t != nil && f.target != nil && f.target.Src == t.Src {
		return
	}
	if t == nil && f.target == nil && f.playing == nil {
		return
	}
	f.target = t
	f.cancelFadeLocked()

	switch {
	case f.playing == nil:
		if t != nil {
			f.startLocked(t)
		}
	case t != nil && f.playing.Src == t.Src:
		f.playing = t
		f.fadeLocked(t.volume(), t.fadeIn(), nil)
	default:
		f.fadeLocked(0, f.playing.fadeOut(), func() {
			f.player.Stop()
			f.playing = nil
			if t != nil {
				f.startLocked(t)
			}
		})
	}
}

// PauseTrack suspends playback without touching fade state.
func (f *Fader) PauseTrack() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playing != nil {
		f.player.Pause()
	}
}

// ResumeTrack continues playback without touching fade state.
func (f *Fader) ResumeTrack() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playing != nil {
		f.player.Resume()
	}
}

// Stop halts playback immediately, skipping any fade.
func (f *Fader) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelFadeLocked()
	if f.playing != nil {
		f.player.Stop()
	}
	f.playing = nil
	f.target = nil
	f.volume = 0
}

// Current returns the track loaded on the player, if any.
func (f *Fader) Current() *Track {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

// Volume returns the player volume last applied.
func (f *Fader) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

// Fading reports whether a fade is in flight.
func (f *Fader) Fading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fade != nil
}

func (f *Fader) startLocked(t *Track) {
	if err := f.player.Play(t.Src); err != nil {
		logging.WarnWithContext(f.logger, "background track start failed", "track_start_failed",
			logging.String("src", t.Src),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session continues without background audio"),
		)
		f.playing = nil
		f.target = nil
		return
	}
	f.playing = t
	f.volume = 0
	f.player.SetVolume(0)
	f.fadeLocked(t.volume(), t.fadeIn(), nil)
}

// fadeLocked interpolates the volume linearly towards to over d, one step
// per frame, then runs done with the lock held.
func (f *Fader) fadeLocked(to float64, d time.Duration, done func()) {
	f.gen++
	gen := f.gen
	from := f.volume
	started := f.sched.Now()

	finish := func() {
		f.volume = to
		f.player.SetVolume(to)
		if done != nil {
			done()
		}
	}
	if d <= 0 {
		finish()
		return
	}

	f.fade = f.sched.Every(FrameInterval, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if gen != f.gen {
			return
		}
		elapsed := f.sched.Now().Sub(started)
		if elapsed >= d {
			f.cancelFadeLocked()
			finish()
			return
		}
		progress := float64(elapsed) / float64(d)
		f.volume = from + (to-from)*progress
		f.player.SetVolume(f.volume)
	})
}

func (f *Fader) cancelFadeLocked() {
	f.gen++
	if f.fade != nil {
		f.fade()
		f.fade = nil
	}
}
