// Package audio holds the small PCM and WAV helpers shared by the metronome
// and the narration providers.
package audio

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
	"time"
)

const (
	MIMEWAV  = "audio/wav"
	MIMEMPEG = "audio/mpeg"

	wavHeaderSize = 44
	bitDepth      = 16
)

// WrapPCM16 prefixes little-endian 16-bit PCM samples with a WAV header.
func WrapPCM16(pcm []byte, sampleRate, channels int) []byte {
	if channels <= 0 {
		channels = 1
	}
	blockAlign := channels * bitDepth / 8
	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + len(pcm))
	buf.WriteString("RIFF")
	le(&buf, uint32(36+len(pcm)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	le(&buf, uint32(16))
	le(&buf, uint16(1))
	le(&buf, uint16(channels))
	le(&buf, uint32(sampleRate))
	le(&buf, uint32(sampleRate*blockAlign))
	le(&buf, uint16(blockAlign))
	le(&buf, uint16(bitDepth))
	buf.WriteString("data")
	le(&buf, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

// EncodeSamples renders samples as little-endian PCM.
func EncodeSamples(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// IsWAV reports whether data starts with a RIFF/WAVE header.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// WAVDuration returns the playing time of a canonical 44-byte-header WAV
// clip. It reports false for anything else.
func WAVDuration(data []byte) (time.Duration, bool) {
	if !IsWAV(data) || len(data) < wavHeaderSize || string(data[36:40]) != "data" {
		return 0, false
	}
	byteRate := binary.LittleEndian.Uint32(data[28:32])
	size := binary.LittleEndian.Uint32(data[40:44])
	if byteRate == 0 {
		return 0, false
	}
	return time.Duration(uint64(size) * uint64(time.Second) / uint64(byteRate)), true
}

// PCMRate extracts the rate parameter from a raw PCM MIME type such as
// "audio/L16;codec=pcm;rate=24000". It returns fallback when absent.
func PCMRate(mimeType string, fallback int) int {
	for _, param := range strings.Split(mimeType, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(key, "rate") {
			continue
		}
		if rate, err := strconv.Atoi(value); err == nil && rate > 0 {
			return rate
		}
	}
	return fallback
}

// IsRawPCM reports whether mimeType names headerless 16-bit PCM.
func IsRawPCM(mimeType string) bool {
	lower := strings.ToLower(mimeType)
	return strings.HasPrefix(lower, "audio/l16") || strings.HasPrefix(lower, "audio/pcm")
}

func le(buf *bytes.Buffer, v any) {
	_ = binary.Write(buf, binary.LittleEndian, v)
}
