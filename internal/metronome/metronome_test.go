package metronome_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"spirare/internal/clock"
	"spirare/internal/content"
	"spirare/internal/metronome"
)

type recordingSink struct {
	mu    sync.Mutex
	tones [][]byte
	err   error
}

func (s *recordingSink) PlayTone(wav []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tones = append(s.tones, wav)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tones)
}

func newManual() *clock.Manual {
	return clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func TestBeatFlipsEveryTick(t *testing.T) {
	sched := newManual()
	sink := &recordingSink{}
	m := metronome.New(sched, metronome.WithSink(sink))
	m.Start()

	sched.Advance(time.Second)
	if !m.BeatActive() {
		t.Fatal("expected beat active after first tick")
	}
	sched.Advance(time.Second)
	if m.BeatActive() {
		t.Fatal("expected beat inactive after second tick")
	}
	if sink.count() != 2 {
		t.Fatalf("expected 2 tones, got %d", sink.count())
	}

	m.Stop()
	sched.Advance(5 * time.Second)
	if sink.count() != 2 || m.Playing() {
		t.Fatalf("expected no ticks after stop, tones=%d", sink.count())
	}
	if sched.Pending() != 0 {
		t.Fatalf("expected interval torn down, pending=%d", sched.Pending())
	}
}

func TestSetPeriodClampsAndRestarts(t *testing.T) {
	sched := newManual()
	m := metronome.New(sched)
	if got := m.SetPeriod(100); got != content.MinPeriodMs {
		t.Fatalf("expected clamp to %d, got %d", content.MinPeriodMs, got)
	}
	if got := m.SetPeriod(9000); got != content.MaxPeriodMs {
		t.Fatalf("expected clamp to %d, got %d", content.MaxPeriodMs, got)
	}

	var beats int
	m = metronome.New(sched, metronome.WithBeatObserver(func(bool) { beats++ }))
	m.Start()
	sched.Advance(900 * time.Millisecond)
	m.SetPeriod(600)
	if sched.Pending() != 1 {
		t.Fatalf("expected exactly one interval after period change, got %d", sched.Pending())
	}
	sched.Advance(600 * time.Millisecond)
	if beats != 1 {
		t.Fatalf("expected restarted interval to tick at the new period, beats=%d", beats)
	}
	if !m.Playing() {
		t.Fatal("expected metronome to keep playing across period change")
	}
}

func TestToggle(t *testing.T) {
	sched := newManual()
	m := metronome.New(sched)
	if !m.Toggle() {
		t.Fatal("expected toggle to start")
	}
	if m.Toggle() {
		t.Fatal("expected toggle to stop")
	}
	if sched.Pending() != 0 {
		t.Fatalf("expected no pending interval, got %d", sched.Pending())
	}
}

func TestMuteSuppressesTonesNotBeats(t *testing.T) {
	sched := newManual()
	sink := &recordingSink{}
	m := metronome.New(sched, metronome.WithSink(sink), metronome.WithSettings(content.MetronomeSettings{PeriodMs: 600, IsMuted: true}))
	m.Start()
	sched.Advance(600 * time.Millisecond)
	if sink.count() != 0 {
		t.Fatalf("expected muted metronome to stay silent, got %d tones", sink.count())
	}
	if !m.BeatActive() {
		t.Fatal("expected beat to flip while muted")
	}
}

func TestSinkFailureIsSwallowed(t *testing.T) {
	sched := newManual()
	sink := &recordingSink{err: errors.New("no audio device")}
	m := metronome.New(sched, metronome.WithSink(sink))
	m.Start()
	sched.Advance(3 * time.Second)
	if sink.count() != 3 || !m.Playing() {
		t.Fatalf("expected ticks to continue despite sink errors, tones=%d", sink.count())
	}
}

func TestFrequencyIsInverselyMapped(t *testing.T) {
	if got := metronome.FrequencyFor(600, 600, 1800); got != 880 {
		t.Fatalf("expected 880Hz at fastest period, got %v", got)
	}
	if got := metronome.FrequencyFor(1800, 600, 1800); got != 440 {
		t.Fatalf("expected 440Hz at slowest period, got %v", got)
	}
	if got := metronome.FrequencyFor(1200, 600, 1800); math.Abs(got-660) > 1e-9 {
		t.Fatalf("expected 660Hz midway, got %v", got)
	}
	if metronome.FrequencyFor(700, 600, 1800) <= metronome.FrequencyFor(1000, 600, 1800) {
		t.Fatal("expected shorter periods to sound higher")
	}
}

func TestToneIsValidWAV(t *testing.T) {
	wav := metronome.Tone(880, 50*time.Millisecond)
	if !bytes.HasPrefix(wav, []byte("RIFF")) || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE header")
	}
	dataLen := binary.LittleEndian.Uint32(wav[40:44])
	wantSamples := int(float64(metronome.SampleRate) * 0.05)
	if int(dataLen) != wantSamples*2 {
		t.Fatalf("unexpected data length %d, want %d", dataLen, wantSamples*2)
	}
	if len(wav) != 44+int(dataLen) {
		t.Fatalf("unexpected wav size %d", len(wav))
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Fatalf("expected 16-bit samples, got %d", bits)
	}
}
