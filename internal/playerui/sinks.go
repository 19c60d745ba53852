package playerui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"spirare/internal/audio"
	"spirare/internal/narration"
)

// ClipWriter plays narration on terminals without an audio device. It saves
// each clip under dir when dir is set, then waits for the clip's playing
// time so cues keep their pacing.
type ClipWriter struct {
	dir string

	mu sync.Mutex
	n  int
}

// NewClipWriter returns a ClipWriter saving into dir. An empty dir keeps
// clips in memory only.
func NewClipWriter(dir string) *ClipWriter {
	return &ClipWriter{dir: strings.TrimSpace(dir)}
}

func (c *ClipWriter) Play(ctx context.Context, clip narration.Audio) error {
	if c.dir != "" {
		if err := c.save(clip); err != nil {
			return err
		}
	}
	d, ok := audio.WAVDuration(clip.Data)
	if !ok || d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *ClipWriter) save(clip narration.Audio) error {
	c.mu.Lock()
	c.n++
	n := c.n
	c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create clip dir: %w", err)
	}
	path := filepath.Join(c.dir, fmt.Sprintf("narration-%03d%s", n, clipExt(clip.MIMEType)))
	if err := os.WriteFile(path, clip.Data, 0o644); err != nil {
		return fmt.Errorf("write clip: %w", err)
	}
	return nil
}

// Saved returns how many clips were written.
func (c *ClipWriter) Saved() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Pause and Resume are no-ops: there is no device to hold.
func (c *ClipWriter) Pause()  {}
func (c *ClipWriter) Resume() {}

func clipExt(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, audio.MIMEWAV):
		return ".wav"
	case strings.HasPrefix(mimeType, audio.MIMEMPEG):
		return ".mp3"
	default:
		return ".bin"
	}
}

// Bell is a metronome sink that rings the terminal bell on every audible
// tick.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) PlayTone([]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, "\a")
	return err
}

// SilentTracks is the background-track player used by the terminal: the
// fader still runs its transitions and the view shows the track name.
type SilentTracks struct{}

func (SilentTracks) Play(string) error { return nil }
func (SilentTracks) SetVolume(float64) {}
func (SilentTracks) Pause()            {}
func (SilentTracks) Resume()           {}
func (SilentTracks) Stop()             {}

// BeatRelay forwards metronome beats to a running program. Beats before the
// program attaches are dropped.
type BeatRelay struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Observe is passed to metronome.WithBeatObserver.
func (r *BeatRelay) Observe(active bool) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(BeatMsg(active))
	}
}

func (r *BeatRelay) attach(send func(tea.Msg)) {
	r.mu.Lock()
	r.send = send
	r.mu.Unlock()
}
