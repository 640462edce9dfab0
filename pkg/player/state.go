package player

// Status is the lifecycle state of a player. Transitions:
// idle -> playing <-> paused, playing -> finished, finished -> playing via
// Play (implicit Restart). A player without a script sits in error and
// ignores every control until a script is loaded.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusFinished Status = "finished"
	StatusError    Status = "error"
)

// Layout selects where user text turns reveal. It is fixed at construction
// time; the reveal mechanics are identical in both variants, only the commit
// target differs.
type Layout string

const (
	// LayoutScripted reveals every turn into the transcript.
	LayoutScripted Layout = "scripted"
	// LayoutCombined stages user turns in the composer until commit, the way
	// a live chat box types itself in a demo.
	LayoutCombined Layout = "combined"
)

// phase tracks where the current turn is in its reveal/dwell cycle.
type phase int

const (
	phaseNone phase = iota
	// phaseRevealing grows the buffer one rune per tick (text turns only).
	phaseRevealing
	// phaseDwelling waits out the message delay (text) or the turn duration
	// (tool events) before committing.
	phaseDwelling
)
