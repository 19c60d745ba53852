// Package clock abstracts time and interval scheduling so the playback
// machine, the metronome and the track fader can run against real time in
// production and against a manually advanced clock in tests.
package clock

import (
	"sync"
	"time"
)

// Clock abstracts time to keep timing code deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Cancel stops a scheduled callback. Calling it more than once is harmless,
// and it may be called from inside the callback it cancels.
type Cancel func()

// Scheduler runs callbacks on intervals or after a delay.
type Scheduler interface {
	Clock
	// Every invokes fn every d until the returned Cancel is called.
	Every(d time.Duration, fn func()) Cancel
	// After invokes fn once after d unless cancelled first.
	After(d time.Duration, fn func()) Cancel
}

// System schedules callbacks on real time. Each Every or After call owns one
// goroutine that exits when cancelled.
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

func (System) Every(d time.Duration, fn func()) Cancel {
	stop := make(chan struct{})
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return closeOnce(stop)
}

func (System) After(d time.Duration, fn func()) Cancel {
	stop := make(chan struct{})
	timer := time.NewTimer(d)
	go func() {
		defer timer.Stop()
		select {
		case <-stop:
		case <-timer.C:
			fn()
		}
	}()
	return closeOnce(stop)
}

func closeOnce(ch chan struct{}) Cancel {
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}
