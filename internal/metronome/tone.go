package metronome

import (
	"math"
	"time"

	"spirare/internal/audio"
)

const (
	SampleRate   = 44100
	Channels     = 1
	ToneDuration = 60 * time.Millisecond

	lowHz  = 440.0
	highHz = 880.0
)

// FrequencyFor maps a period onto [440, 880] Hz, inversely: the shortest
// period sounds at 880 Hz and the longest at 440 Hz.
func FrequencyFor(periodMs, minMs, maxMs int) float64 {
	if maxMs <= minMs {
		return highHz
	}
	periodMs = min(max(periodMs, minMs), maxMs)
	ratio := float64(periodMs-minMs) / float64(maxMs-minMs)
	return highHz - ratio*(highHz-lowHz)
}

// Tone renders a mono 16-bit PCM WAV clip of a sine wave at freq with a
// linear decay so consecutive ticks do not click.
func Tone(freq float64, duration time.Duration) []byte {
	n := int(float64(SampleRate) * duration.Seconds())
	samples := make([]int16, n)
	const amplitude = 0.6 * math.MaxInt16
	for i := range samples {
		envelope := 1 - float64(i)/float64(n)
		samples[i] = int16(amplitude * envelope * math.Sin(2*math.Pi*freq*float64(i)/SampleRate))
	}
	return audio.WrapPCM16(audio.EncodeSamples(samples), SampleRate, Channels)
}
