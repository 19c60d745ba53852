// Package composer assembles a MeditationSession for a category from the
// singleton Structure, the category's Theme and the shared base pools.
//
// Structure and Theme are loaded concurrently, and every practice slot draws
// its phrase concurrently, but the assembled session always follows the
// Structure's declared order. Phrase selection goes through a Picker so tests
// can substitute a deterministic source.
package composer
