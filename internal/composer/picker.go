package composer

import "math/rand/v2"

// Picker selects one phrase from a non-empty pool. Implementations must be
// safe for concurrent use.
type Picker interface {
	Pick(pool []string) string
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(pool []string) string

func (f PickerFunc) Pick(pool []string) string { return f(pool) }

// RandomPicker draws uniformly using the runtime's shared random source.
type RandomPicker struct{}

func (RandomPicker) Pick(pool []string) string {
	return pool[rand.IntN(len(pool))]
}

// pick returns "" for an empty pool so callers never hand one to a Picker.
func pick(p Picker, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return p.Pick(pool)
}
