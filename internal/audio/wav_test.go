package audio_test

import (
	"encoding/binary"
	"testing"
	"time"

	"spirare/internal/audio"
)

func TestWrapPCM16Header(t *testing.T) {
	pcm := audio.EncodeSamples([]int16{0, 1000, -1000, 32767})
	wav := audio.WrapPCM16(pcm, 24000, 1)
	if !audio.IsWAV(wav) {
		t.Fatal("expected RIFF/WAVE header")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 24000 {
		t.Fatalf("unexpected sample rate %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); int(got) != len(pcm) {
		t.Fatalf("unexpected data size %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(wav[44+4:])); got != -1000 {
		t.Fatalf("unexpected third sample %d", got)
	}
}

func TestPCMRate(t *testing.T) {
	if got := audio.PCMRate("audio/L16;codec=pcm;rate=24000", 16000); got != 24000 {
		t.Fatalf("expected 24000, got %d", got)
	}
	if got := audio.PCMRate("audio/L16", 16000); got != 16000 {
		t.Fatalf("expected fallback, got %d", got)
	}
	if !audio.IsRawPCM("audio/L16;rate=24000") || audio.IsRawPCM("audio/mpeg") {
		t.Fatal("unexpected raw pcm detection")
	}
}

func TestWAVDuration(t *testing.T) {
	wav := audio.WrapPCM16(make([]byte, 2*8000), 8000, 1)
	d, ok := audio.WAVDuration(wav)
	if !ok || d != time.Second {
		t.Fatalf("expected 1s, got %v %v", d, ok)
	}
	if _, ok := audio.WAVDuration([]byte("ID3 mp3 data")); ok {
		t.Fatal("expected non-WAV data to be rejected")
	}
}
