package content

// MeditationSession is the composed, never persisted, walkthrough for one
// category.
type MeditationSession struct {
	Category    string        `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Stages      []StageResult `json:"stages"`
}

type StageResult struct {
	Stage     Stage            `json:"stage"`
	Practices []PracticeResult `json:"practices"`
}

// PracticeResult is one drawn phrase. IsSpecific is true when the phrase came
// from the theme override rather than the base pool.
type PracticeResult struct {
	Practice   string `json:"practice"`
	Text       string `json:"text"`
	IsSpecific bool   `json:"isSpecific"`
}

// PracticeCount returns the number of practices across all stages.
func (s MeditationSession) PracticeCount() int {
	n := 0
	for _, stage := range s.Stages {
		n += len(stage.Practices)
	}
	return n
}
