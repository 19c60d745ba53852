package playback

import (
	"fmt"
	"time"

	"spirare/internal/content"
	"spirare/internal/crossfade"
	"spirare/internal/services"
)

// CompletionNarration is spoken when the machine enters FinalStage.
const CompletionNarration = "Your meditation is complete. Stay with the rhythm for as long as you wish, and return when you are ready."

// Substep is one timed beat of a stage.
type Substep struct {
	Practice string
	Text     string
	Duration time.Duration
}

// StageScript is one stage of a walkthrough.
type StageScript struct {
	Name     content.Stage
	Title    string
	Intro    string
	Outro    string
	Substeps []Substep
	Track    *crossfade.Track
}

// Script is the full walkthrough a Machine plays.
type Script struct {
	Category string
	Title    string
	Stages   []StageScript
}

// Validate rejects scripts the machine cannot walk.
func (s Script) Validate() error {
	if len(s.Stages) == 0 {
		return services.Wrap(services.ErrValidation, "playback", "validate script", "script has no stages", nil)
	}
	for i, stage := range s.Stages {
		if len(stage.Substeps) == 0 {
			return services.Wrap(services.ErrValidation, "playback", "validate script",
				fmt.Sprintf("stage %d (%s) has no substeps", i, stage.Name), nil)
		}
		for j, sub := range stage.Substeps {
			if sub.Duration < TickInterval {
				return services.Wrap(services.ErrValidation, "playback", "validate script",
					fmt.Sprintf("stage %d substep %d shorter than one tick", i, j), nil)
			}
		}
	}
	return nil
}

// SubstepTotal returns the number of substeps across all stages.
func (s Script) SubstepTotal() int {
	n := 0
	for _, stage := range s.Stages {
		n += len(stage.Substeps)
	}
	return n
}

// Duration returns the total timed length of the script.
func (s Script) Duration() time.Duration {
	var d time.Duration
	for _, stage := range s.Stages {
		for _, sub := range stage.Substeps {
			d += sub.Duration
		}
	}
	return d
}

var stageNarration = map[content.Stage]struct{ intro, outro string }{
	content.StageOpening: {
		intro: "Welcome. Let us begin by arriving here, in this moment.",
		outro: "Let this sense of arrival stay with you.",
	},
	content.StageConcentration: {
		intro: "Now we gather the attention and rest it on a single point.",
		outro: "Release the focus gently, without hurry.",
	},
	content.StageExploration: {
		intro: "From this steadiness, let awareness open and explore.",
		outro: "Slowly let the images and questions fade.",
	},
	content.StageAwakening: {
		intro: "It is time to return, bringing this calm back with you.",
		outro: "",
	},
}

// FromSession turns a composed session into a script. Each composed practice
// becomes one substep lasting substep; tracks maps stages to their background
// track and may be nil.
func FromSession(session content.MeditationSession, tracks map[content.Stage]*crossfade.Track, substep time.Duration) Script {
	script := Script{Category: session.Category, Title: session.Title}
	for _, result := range session.Stages {
		stage := StageScript{
			Name:  result.Stage,
			Title: result.Stage.Label(),
			Intro: stageNarration[result.Stage].intro,
			Outro: stageNarration[result.Stage].outro,
			Track: tracks[result.Stage],
		}
		for _, practice := range result.Practices {
			stage.Substeps = append(stage.Substeps, Substep{
				Practice: practice.Practice,
				Text:     practice.Text,
				Duration: substep,
			})
		}
		if len(stage.Substeps) > 0 {
			script.Stages = append(script.Stages, stage)
		}
	}
	return script
}

// TracksFromSongs picks the first song associated with each stage.
func TracksFromSongs(songs []content.Song) map[content.Stage]*crossfade.Track {
	tracks := make(map[content.Stage]*crossfade.Track)
	for _, song := range songs {
		if song.Stage == "" || song.Src == "" {
			continue
		}
		if _, ok := tracks[song.Stage]; !ok {
			tracks[song.Stage] = crossfade.TrackFromSong(song)
		}
	}
	return tracks
}

var referenceText = map[content.Stage][]string{
	content.StageOpening: {
		"Sit upright and let your shoulders soften.",
		"Set a simple intention for this practice.",
		"Take three slow breaths, longer on the exhale.",
		"Feel the weight of your body supported by the ground.",
	},
	content.StageConcentration: {
		"Rest your attention on the breath at the nostrils.",
		"Count each exhale from one to ten, then begin again.",
		"Move your attention slowly from head to feet.",
		"Choose one sensation and return to it whenever you drift.",
	},
	content.StageExploration: {
		"Picture a quiet place where you feel completely safe.",
		"Ask yourself gently what you need right now.",
		"Let awareness widen to include every sound and sensation.",
		"Offer a wish of kindness to yourself and to others.",
	},
	content.StageAwakening: {
		"Recall one thing you are grateful for today.",
		"Take a deep breath in and let it go completely.",
		"Wiggle your fingers and toes and stretch if you like.",
		"When you are ready, open your eyes.",
	},
}

// ReferenceScript returns the fixed four-stage, four-substep walkthrough used
// for previews when no composed session is available.
func ReferenceScript(substep time.Duration) Script {
	structure := content.DefaultStructure()
	script := Script{Category: "reference", Title: "Guided Meditation"}
	for _, stage := range content.Stages() {
		st := StageScript{
			Name:  stage,
			Title: stage.Label(),
			Intro: stageNarration[stage].intro,
			Outro: stageNarration[stage].outro,
		}
		texts := referenceText[stage]
		for i, practice := range structure.Practices(stage) {
			text := ""
			if i < len(texts) {
				text = texts[i]
			}
			st.Substeps = append(st.Substeps, Substep{Practice: practice, Text: text, Duration: substep})
		}
		script.Stages = append(script.Stages, st)
	}
	return script
}
