package content

import (
	"fmt"
	"slices"
	"strings"

	"spirare/internal/services"
	"spirare/internal/textutil"
)

// Stage is one of the four macro-phases of a session.
type Stage string

const (
	StageOpening       Stage = "opening"
	StageConcentration Stage = "concentration"
	StageExploration   Stage = "exploration"
	StageAwakening     Stage = "awakening"
)

var stageOrder = []Stage{StageOpening, StageConcentration, StageExploration, StageAwakening}

// vocabulary lists the practice slots each stage accepts, in their default order.
var vocabulary = map[Stage][]string{
	StageOpening:       {"posture", "intention", "initial_breathing", "grounding"},
	StageConcentration: {"breath_focus", "counting", "body_scan", "anchor"},
	StageExploration:   {"visualization", "inquiry", "open_awareness", "loving_kindness"},
	StageAwakening:     {"gratitude", "final_breathing", "movement", "closing"},
}

// Stages returns the canonical stage order.
func Stages() []Stage {
	return slices.Clone(stageOrder)
}

// ParseStage resolves a stage name case-insensitively.
func ParseStage(value string) (Stage, error) {
	stage := Stage(strings.ToLower(strings.TrimSpace(value)))
	if !stage.Valid() {
		return "", services.Wrap(services.ErrValidation, "content", "parse stage", fmt.Sprintf("unknown stage %q", value), nil)
	}
	return stage, nil
}

func (s Stage) Valid() bool {
	_, ok := vocabulary[s]
	return ok
}

// Index returns the position of s in the canonical order, or -1.
func (s Stage) Index() int {
	return slices.Index(stageOrder, s)
}

// Vocabulary returns the practices s accepts.
func (s Stage) Vocabulary() []string {
	return slices.Clone(vocabulary[s])
}

// Allows reports whether practice belongs to the stage vocabulary.
func (s Stage) Allows(practice string) bool {
	return slices.Contains(vocabulary[s], practice)
}

func (s Stage) Label() string {
	return textutil.Label(string(s))
}

func (s Stage) String() string {
	return string(s)
}

func validationError(operation, format string, args ...any) error {
	return services.Wrap(services.ErrValidation, "content", operation, fmt.Sprintf(format, args...), nil)
}
