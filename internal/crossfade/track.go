// Package crossfade manages a single looping background track with linear
// fade-in on start and fade-out on stop or replacement.
package crossfade

import (
	"time"

	"spirare/internal/content"
)

const (
	DefaultFadeIn  = 1500 * time.Millisecond
	DefaultFadeOut = 1500 * time.Millisecond
	DefaultVolume  = 0.5

	// FrameInterval paces fade steps at roughly 60 per second.
	FrameInterval = time.Second / 60
)

// Track describes one background track. Zero values are unset rather than
// literal: a zero FadeIn or FadeOut fades over DefaultFadeIn or
// DefaultFadeOut, and a Volume outside (0, 1] plays at DefaultVolume. Use a
// short positive duration for a near-instant fade.
type Track struct {
	Src     string
	Title   string
	FadeIn  time.Duration
	FadeOut time.Duration
	Volume  float64
}

// TrackFromSong converts stored song metadata into a Track.
func TrackFromSong(s content.Song) *Track {
	return &Track{
		Src:     s.Src,
		Title:   s.Title,
		FadeIn:  time.Duration(s.FadeInMs) * time.Millisecond,
		FadeOut: time.Duration(s.FadeOutMs) * time.Millisecond,
		Volume:  s.Volume,
	}
}

func (t *Track) fadeIn() time.Duration {
	if t.FadeIn <= 0 {
		return DefaultFadeIn
	}
	return t.FadeIn
}

func (t *Track) fadeOut() time.Duration {
	if t.FadeOut <= 0 {
		return DefaultFadeOut
	}
	return t.FadeOut
}

func (t *Track) volume() float64 {
	if t.Volume <= 0 || t.Volume > 1 {
		return DefaultVolume
	}
	return t.Volume
}
