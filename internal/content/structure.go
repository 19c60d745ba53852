package content

import "slices"

// Structure is the singleton document ordering practice slots per stage.
type Structure struct {
	Opening       []string `json:"opening" yaml:"opening" bson:"opening"`
	Concentration []string `json:"concentration" yaml:"concentration" bson:"concentration"`
	Exploration   []string `json:"exploration" yaml:"exploration" bson:"exploration"`
	Awakening     []string `json:"awakening" yaml:"awakening" bson:"awakening"`
}

// DefaultStructure uses every practice of every stage in vocabulary order.
func DefaultStructure() Structure {
	var s Structure
	for _, stage := range stageOrder {
		s.SetPractices(stage, stage.Vocabulary())
	}
	return s
}

// Practices returns the declared practice order for stage.
func (s Structure) Practices(stage Stage) []string {
	switch stage {
	case StageOpening:
		return s.Opening
	case StageConcentration:
		return s.Concentration
	case StageExploration:
		return s.Exploration
	case StageAwakening:
		return s.Awakening
	default:
		return nil
	}
}

// SetPractices replaces the practice order for stage. Unknown stages are ignored.
func (s *Structure) SetPractices(stage Stage, practices []string) {
	practices = slices.Clone(practices)
	switch stage {
	case StageOpening:
		s.Opening = practices
	case StageConcentration:
		s.Concentration = practices
	case StageExploration:
		s.Exploration = practices
	case StageAwakening:
		s.Awakening = practices
	}
}

// SlotCount returns the number of practice slots across all stages.
func (s Structure) SlotCount() int {
	return len(s.Opening) + len(s.Concentration) + len(s.Exploration) + len(s.Awakening)
}

// Validate checks every slot against its stage vocabulary and rejects
// duplicates within a stage.
func (s Structure) Validate() error {
	for _, stage := range stageOrder {
		seen := make(map[string]struct{})
		for _, practice := range s.Practices(stage) {
			if !stage.Allows(practice) {
				return validationError("validate structure", "practice %q is not part of stage %s", practice, stage)
			}
			if _, dup := seen[practice]; dup {
				return validationError("validate structure", "practice %q listed twice in stage %s", practice, stage)
			}
			seen[practice] = struct{}{}
		}
	}
	return nil
}
