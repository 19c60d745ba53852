package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label turns an identifier such as "initial_breathing" into "Initial Breathing".
// A Caser is stateful, so one is built per call.
func Label(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}
