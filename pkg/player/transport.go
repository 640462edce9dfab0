package player

import (
	"github.com/go-go-golems/marionette/pkg/events"
)

// Play starts playback from idle, resumes from paused exactly where the
// buffers left off, and restarts from finished. No-op while already playing
// or without a loaded script.
func (p *Player) Play() {
	p.mu.Lock()
	if p.script == nil {
		p.mu.Unlock()
		return
	}
	switch p.status {
	case StatusIdle:
		p.logger.Debug().Msg("playback started")
		p.emit(p.beginLocked()...)
	case StatusPaused:
		p.logger.Debug().Msg("playback resumed")
		p.emit(p.resumeLocked()...)
	case StatusFinished:
		p.logger.Debug().Msg("playback restarted from finished")
		p.emit(p.restartLocked()...)
	default:
		p.mu.Unlock()
	}
}

// Pause freezes playback, cancelling the outstanding timer and preserving the
// reveal and composer buffers. No-op unless playing.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.script == nil || p.status != StatusPlaying {
		p.mu.Unlock()
		return
	}
	p.suspendLocked()
	p.logger.Debug().Int("cursor", p.cursor).Msg("playback paused")
	p.emit(events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
}

// Restart rewinds to the top and plays: history and buffers cleared, cursor
// zero, status playing. Works from any state with a script loaded.
func (p *Player) Restart() {
	p.mu.Lock()
	if p.script == nil {
		p.mu.Unlock()
		return
	}
	p.logger.Debug().Msg("playback restarted")
	p.emit(p.restartLocked()...)
}

// Skip completes the current text turn's reveal in one step. The turn still
// waits out its dwell before committing, so skipping then waiting matches a
// natural reveal. The one exception is a user turn staged in the composer
// (combined layout): skipping it sends the message, committing and advancing
// immediately. Event turns are not skippable, their dwell governs.
func (p *Player) Skip() {
	p.mu.Lock()
	if p.script == nil || (p.status != StatusPlaying && p.status != StatusPaused) {
		p.mu.Unlock()
		return
	}
	if p.phase == phaseNone || p.cursor >= p.script.Len() {
		p.mu.Unlock()
		return
	}
	if p.script.Turns[p.cursor].IsEvent() {
		p.mu.Unlock()
		return
	}

	if p.stagingLocked() {
		p.logger.Debug().Int("cursor", p.cursor).Msg("staged turn skipped, committing")
		evts := p.fillBufferLocked()
		evts = append(evts, p.commitLocked()...)
		evts = append(evts, p.advanceLocked()...)
		evts = append(evts, events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
		p.emit(evts...)
		return
	}

	if p.phase != phaseRevealing {
		// already fully revealed, the dwell owns the commit
		p.mu.Unlock()
		return
	}
	p.logger.Debug().Int("cursor", p.cursor).Msg("reveal skipped")
	evts := p.fillBufferLocked()
	p.enterDwellLocked(p.delay)
	p.emit(evts...)
}

// Next force-commits the current turn with its full content and advances,
// regardless of reveal progress. On the last turn playback finishes. No-op
// when there is no current turn.
func (p *Player) Next() {
	p.mu.Lock()
	if p.script == nil || p.status == StatusFinished {
		p.mu.Unlock()
		return
	}
	if p.cursor >= p.script.Len() {
		p.mu.Unlock()
		return
	}

	var evts []events.Event
	if !p.script.Turns[p.cursor].IsEvent() && p.phase != phaseNone {
		evts = append(evts, p.fillBufferLocked()...)
	}
	p.logger.Debug().Int("cursor", p.cursor).Msg("turn force-committed")
	evts = append(evts, p.commitLocked()...)
	evts = append(evts, p.advanceLocked()...)
	evts = append(evts, events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
	p.emit(evts...)
}

// SetSpeed changes the reveal rate in characters per second, clamped to at
// least 1. A turn mid-reveal continues at the new cadence without restarting.
func (p *Player) SetSpeed(rate int) {
	p.mu.Lock()
	if p.script == nil {
		p.mu.Unlock()
		return
	}
	p.rate = clampRate(rate)
	if p.status == StatusPlaying && p.phase == phaseRevealing {
		p.scheduleLocked(p.tickLocked())
	}
	p.logger.Debug().Int("rate", p.rate).Msg("typing speed changed")
	p.emit(events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
}

// SetDelay changes the post-reveal dwell in milliseconds, clamped to at least
// 0. A text turn already dwelling is re-armed with the time it has left under
// the new delay, never restarted from zero. Event turn dwells keep their own
// durations.
func (p *Player) SetDelay(ms int) {
	p.mu.Lock()
	if p.script == nil {
		p.mu.Unlock()
		return
	}
	p.delay = clampDelay(millis(ms))
	if p.phase == phaseDwelling && p.cursor < p.script.Len() && !p.script.Turns[p.cursor].IsEvent() {
		p.phaseDur = p.delay
		if p.status == StatusPlaying {
			remaining := p.phaseDur - p.elapsedLocked()
			if remaining < 0 {
				remaining = 0
			}
			p.scheduleLocked(remaining)
		}
	}
	p.logger.Debug().Dur("delay", p.delay).Msg("message delay changed")
	p.emit(events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
}

// Interrupt stops the in-flight reveal so a live message can take over, and
// publishes the interrupting text to subscribers. Playing becomes paused,
// any other status is left untouched.
func (p *Player) Interrupt(text string) {
	p.mu.Lock()
	if p.status == StatusPlaying {
		p.suspendLocked()
		p.logger.Debug().Msg("playback interrupted")
		p.emit(
			events.NewInterruptEvent(p.metaLocked(), text),
			events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()),
		)
		return
	}
	p.emit(events.NewInterruptEvent(p.metaLocked(), text))
}

// beginLocked transitions idle to playing and starts the turn at the cursor.
func (p *Player) beginLocked() []events.Event {
	p.status = StatusPlaying
	var evts []events.Event
	if p.cursor == 0 {
		evts = append(evts, events.NewStartEvent(p.metaLocked(), p.script.Len()))
	}
	if p.cursor >= p.script.Len() {
		p.status = StatusFinished
		evts = append(evts, events.NewFinishedEvent(p.metaLocked(), p.cursor))
	} else {
		evts = append(evts, p.startTurnLocked()...)
	}
	return append(evts, events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
}

// resumeLocked transitions paused to playing, re-arming the phase the player
// was suspended in with the time it has left.
func (p *Player) resumeLocked() []events.Event {
	p.status = StatusPlaying
	var evts []events.Event
	switch p.phase {
	case phaseNone:
		// paused between turns after a Next, start the pending turn
		if p.cursor < p.script.Len() {
			evts = append(evts, p.startTurnLocked()...)
		}
	case phaseRevealing:
		p.phaseStart = p.clock.Now()
		p.scheduleLocked(p.tickLocked())
	case phaseDwelling:
		p.phaseStart = p.clock.Now()
		remaining := p.phaseDur - p.phaseElapsed
		if remaining < 0 {
			remaining = 0
		}
		p.scheduleLocked(remaining)
	}
	return append(evts, events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
}

// restartLocked rewinds playback to the top and starts the first turn.
func (p *Player) restartLocked() []events.Event {
	p.stopTimerLocked()
	p.history = nil
	p.cursor = 0
	p.resetPhaseLocked()
	p.status = StatusPlaying

	evts := []events.Event{events.NewStartEvent(p.metaLocked(), p.script.Len())}
	if p.script.Len() == 0 {
		p.status = StatusFinished
		evts = append(evts, events.NewFinishedEvent(p.metaLocked(), 0))
	} else {
		evts = append(evts, p.startTurnLocked()...)
	}
	return append(evts, events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
}
