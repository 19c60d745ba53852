package content

import (
	"cmp"
	"slices"
)

// BasePool holds the shared fallback phrases for one (stage, practice) slot.
type BasePool struct {
	Stage    Stage    `json:"stage" yaml:"stage" bson:"stage"`
	Practice string   `json:"practice" yaml:"practice" bson:"practice"`
	Phrases  []string `json:"phrases" yaml:"phrases" bson:"phrases"`
}

// Normalize drops blank phrases.
func (p *BasePool) Normalize() {
	p.Phrases = cleanPhrases(p.Phrases)
}

func (p BasePool) Validate() error {
	if !p.Stage.Valid() {
		return validationError("validate pool", "unknown stage %q", p.Stage)
	}
	if !p.Stage.Allows(p.Practice) {
		return validationError("validate pool", "practice %q is not part of stage %s", p.Practice, p.Stage)
	}
	return nil
}

// SortPools orders pools by stage, then by the practice's position in the
// stage vocabulary.
func SortPools(pools []BasePool) {
	slices.SortFunc(pools, func(a, b BasePool) int {
		if c := cmp.Compare(a.Stage.Index(), b.Stage.Index()); c != 0 {
			return c
		}
		return cmp.Compare(slices.Index(a.Stage.Vocabulary(), a.Practice), slices.Index(b.Stage.Vocabulary(), b.Practice))
	})
}
