package player

import "time"

// Clock abstracts time and timer scheduling so playback can be driven
// deterministically in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is the handle of a scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing if it has not fired yet.
	Stop() bool
}

// SystemClock delegates to the runtime clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return systemTimer{timer: time.AfterFunc(d, fn)}
}

type systemTimer struct {
	timer *time.Timer
}

func (t systemTimer) Stop() bool {
	return t.timer.Stop()
}

var _ Clock = SystemClock{}
