package content

import (
	"strings"
	"time"

	"spirare/internal/textutil"
)

// PhrasePools maps a practice to its candidate phrases.
type PhrasePools map[string][]string

// ThemeStructure is a partial stage -> practice -> phrases override.
type ThemeStructure map[Stage]PhrasePools

// Theme is one selectable meditation category.
type Theme struct {
	ID          string         `json:"id" yaml:"id,omitempty" bson:"id"`
	Category    string         `json:"category" yaml:"category" bson:"category"`
	Title       string         `json:"title" yaml:"title" bson:"title"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
	Structure   ThemeStructure `json:"structure,omitempty" yaml:"structure,omitempty" bson:"structure,omitempty"`
	IsActive    bool           `json:"isActive" yaml:"isActive" bson:"isActive"`
	CreatedAt   time.Time      `json:"createdAt" yaml:"createdAt,omitempty" bson:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt" yaml:"updatedAt,omitempty" bson:"updatedAt"`
}

// NormalizeCategory returns the canonical join key for a category name.
func NormalizeCategory(category string) string {
	return textutil.Slug(category)
}

// Override returns the theme's phrase pool for a slot, or nil.
func (t Theme) Override(stage Stage, practice string) []string {
	if t.Structure == nil {
		return nil
	}
	return t.Structure[stage][practice]
}

// OverrideCount returns how many slots carry a non-empty override.
func (t Theme) OverrideCount() int {
	n := 0
	for _, pools := range t.Structure {
		for _, phrases := range pools {
			if len(phrases) > 0 {
				n++
			}
		}
	}
	return n
}

// Normalize canonicalizes the category, trims text fields and drops blank
// phrases from overrides.
func (t *Theme) Normalize() {
	t.Category = NormalizeCategory(t.Category)
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	for stage, pools := range t.Structure {
		for practice, phrases := range pools {
			pools[practice] = cleanPhrases(phrases)
		}
		t.Structure[stage] = pools
	}
}

// Validate checks the theme's identity fields and that every override
// addresses a known (stage, practice) slot.
func (t Theme) Validate() error {
	if t.Category == "" {
		return validationError("validate theme", "category is required")
	}
	if t.Category != NormalizeCategory(t.Category) {
		return validationError("validate theme", "category %q is not normalized", t.Category)
	}
	if t.Title == "" {
		return validationError("validate theme", "title is required for %s", t.Category)
	}
	for stage, pools := range t.Structure {
		if !stage.Valid() {
			return validationError("validate theme", "unknown stage %q in %s", stage, t.Category)
		}
		for practice := range pools {
			if !stage.Allows(practice) {
				return validationError("validate theme", "practice %q is not part of stage %s in %s", practice, stage, t.Category)
			}
		}
	}
	return nil
}

func cleanPhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if trimmed := strings.TrimSpace(phrase); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
