package content

import (
	"strings"
	"time"
)

const (
	// DefaultFadeMs applies to songs that leave their fade durations unset.
	DefaultFadeMs = 1500
	// DefaultVolume is the target volume of a song that leaves it unset.
	DefaultVolume = 0.5
)

// Song is background-track metadata. Stage, when set, makes the song the
// background track for that stage during playback.
type Song struct {
	ID        string    `json:"id" yaml:"id,omitempty" bson:"id"`
	Title     string    `json:"title" yaml:"title" bson:"title"`
	Artist    string    `json:"artist,omitempty" yaml:"artist,omitempty" bson:"artist,omitempty"`
	Src       string    `json:"src" yaml:"src" bson:"src"`
	FadeInMs  int       `json:"fadeInMs" yaml:"fadeInMs,omitempty" bson:"fadeInMs"`
	FadeOutMs int       `json:"fadeOutMs" yaml:"fadeOutMs,omitempty" bson:"fadeOutMs"`
	Volume    float64   `json:"volume" yaml:"volume,omitempty" bson:"volume"`
	Stage     Stage     `json:"stage,omitempty" yaml:"stage,omitempty" bson:"stage,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt,omitempty" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt,omitempty" bson:"updatedAt"`
}

// Normalize trims text fields and fills unset fade and volume values.
func (s *Song) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Artist = strings.TrimSpace(s.Artist)
	s.Src = strings.TrimSpace(s.Src)
	s.Stage = Stage(strings.ToLower(strings.TrimSpace(string(s.Stage))))
	if s.FadeInMs == 0 {
		s.FadeInMs = DefaultFadeMs
	}
	if s.FadeOutMs == 0 {
		s.FadeOutMs = DefaultFadeMs
	}
	if s.Volume == 0 {
		s.Volume = DefaultVolume
	}
}

func (s Song) Validate() error {
	if s.Title == "" {
		return validationError("validate song", "title is required")
	}
	if s.Src == "" {
		return validationError("validate song", "src is required for %q", s.Title)
	}
	if s.FadeInMs < 0 || s.FadeOutMs < 0 {
		return validationError("validate song", "fade durations must not be negative for %q", s.Title)
	}
	if s.Volume < 0 || s.Volume > 1 {
		return validationError("validate song", "volume must be between 0 and 1 for %q", s.Title)
	}
	if s.Stage != "" && !s.Stage.Valid() {
		return validationError("validate song", "unknown stage %q for %q", s.Stage, s.Title)
	}
	return nil
}
