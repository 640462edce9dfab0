// Package player drives the timed replay of a conversation script: character
// by character reveal of text turns, dwell windows for tool events, and a
// transport control surface (play, pause, skip, next, restart, speed and delay
// changes). All state lives behind a single mutex; timing goes through an
// injected Clock so playback is fully deterministic under test.
//
// Subscribers observe playback through events.EventSink implementations passed
// at construction. Every state transition publishes an EventStateChange
// snapshot after its granular events, and events are published in the exact
// order the corresponding mutations were applied.
package player

import (
	"sync"
	"time"

	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/lithammer/shortuuid/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Player replays one script at a time. The zero value is not usable, use New.
//
// Locking: p.mu guards all mutable state. Events are handed to sinks by emit,
// which acquires p.pubMu before releasing p.mu so that publish order always
// matches mutation order even when a sink blocks until its subscriber acks.
// Sinks and their downstream handlers may call the player's read accessors
// (they only take p.mu), but must not call transport methods reentrantly.
type Player struct {
	mu    sync.Mutex
	pubMu sync.Mutex

	clock     Clock
	sinks     []events.EventSink
	layout    Layout
	sessionID string
	logger    zerolog.Logger

	rateOverride  *int
	delayOverride *time.Duration

	script  *script.Script
	status  Status
	cursor  int
	history []script.Turn

	rate  int
	delay time.Duration

	// reveal/dwell progress over the current turn
	pos          int
	phase        phase
	phaseStart   time.Time
	phaseElapsed time.Duration
	phaseDur     time.Duration

	// gen invalidates outstanding timer callbacks. stopTimerLocked bumps it;
	// a callback that wakes up with a stale generation returns immediately.
	gen   uint64
	timer Timer
}

type Option func(*Player)

// WithClock replaces the system clock, used by tests to drive time manually.
func WithClock(c Clock) Option {
	return func(p *Player) {
		p.clock = c
	}
}

// WithSink appends an event sink. Sinks receive every playback event in order.
func WithSink(s events.EventSink) Option {
	return func(p *Player) {
		p.sinks = append(p.sinks, s)
	}
}

// WithLayout selects the layout variant. The layout is fixed for the lifetime
// of the player.
func WithLayout(l Layout) Option {
	return func(p *Player) {
		p.layout = l
	}
}

// WithRate overrides the script's typingSpeed for every loaded script.
func WithRate(rate int) Option {
	return func(p *Player) {
		p.rateOverride = &rate
	}
}

// WithDelay overrides the script's messageDelayMs for every loaded script.
func WithDelay(d time.Duration) Option {
	return func(p *Player) {
		p.delayOverride = &d
	}
}

// New returns a player with no script loaded. Until Load succeeds the player
// reports StatusError and every transport control is a no-op.
func New(opts ...Option) *Player {
	p := &Player{
		clock:     SystemClock{},
		layout:    LayoutScripted,
		sessionID: shortuuid.New(),
		status:    StatusError,
		rate:      script.DefaultTypingSpeed,
		delay:     script.DefaultMessageDelayMs * time.Millisecond,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = log.With().Str("session_id", p.sessionID).Logger()
	return p
}

// NewWithScript returns a player with s already loaded and idle.
func NewWithScript(s *script.Script, opts ...Option) (*Player, error) {
	p := New(opts...)
	if err := p.Load(s); err != nil {
		return nil, err
	}
	return p, nil
}

// Load replaces the current script and reinitializes playback: history and
// buffers are cleared, the cursor returns to zero and the player goes idle.
// A nil script puts the player into StatusError, where every control no-ops
// until a following Load succeeds.
func (p *Player) Load(s *script.Script) error {
	p.mu.Lock()
	p.stopTimerLocked()
	p.history = nil
	p.cursor = 0
	p.resetPhaseLocked()

	if s == nil {
		p.script = nil
		p.status = StatusError
		err := errors.New("no script loaded")
		p.logger.Warn().Msg("load called with nil script")
		p.emit(
			events.NewErrorEvent(p.metaLocked(), err),
			events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()),
		)
		return err
	}

	p.script = s.Clone()
	p.rate = p.script.Rate()
	if p.rateOverride != nil {
		p.rate = clampRate(*p.rateOverride)
	}
	p.delay = p.script.Delay()
	if p.delayOverride != nil {
		p.delay = clampDelay(*p.delayOverride)
	}
	p.status = StatusIdle

	p.logger.Debug().
		Str("title", p.script.Title).
		Int("turns", p.script.Len()).
		Int("rate", p.rate).
		Dur("delay", p.delay).
		Msg("script loaded")

	p.emit(events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
	return nil
}

// SessionID identifies this player instance in event metadata.
func (p *Player) SessionID() string {
	return p.sessionID
}

// State returns a snapshot of the current playback state.
func (p *Player) State() events.StateSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// History returns the committed turns in order. The slice and its turns are
// deep copies, outside the commit instant len(History()) equals the cursor.
func (p *Player) History() []script.Turn {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]script.Turn, len(p.history))
	for i, t := range p.history {
		out[i] = t.Clone()
	}
	return out
}

// CurrentTurn returns a copy of the turn at the cursor, false when playback
// has no current turn (no script, or every turn committed).
func (p *Player) CurrentTurn() (script.Turn, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.script == nil || p.cursor >= p.script.Len() {
		return script.Turn{}, false
	}
	return p.script.Turns[p.cursor].Clone(), true
}

// RevealText returns the revealed prefix of the current turn, empty while the
// turn is staged in the composer instead.
func (p *Player) RevealText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stagingLocked() {
		return ""
	}
	return p.partialLocked()
}

// ComposerText returns the staged prefix of the current user turn in combined
// layout, empty otherwise.
func (p *Player) ComposerText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.stagingLocked() {
		return ""
	}
	return p.partialLocked()
}

// Progress returns the dwell fraction of the current event turn in [0,1],
// computed on demand from the clock. Zero for text turns.
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progressLocked()
}

// Script returns a copy of the loaded script, nil when none is loaded.
func (p *Player) Script() *script.Script {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.script.Clone()
}

// Layout returns the layout variant the player was built with.
func (p *Player) Layout() Layout {
	return p.layout
}

// --- internal machinery, all *Locked methods require p.mu held ---

// emit publishes evts to every sink in order and releases p.mu. It must be
// called with p.mu held and be the final statement of the operation. Taking
// p.pubMu before releasing p.mu serializes publishes in mutation order.
func (p *Player) emit(evts ...events.Event) {
	if len(evts) == 0 || len(p.sinks) == 0 {
		p.mu.Unlock()
		return
	}
	sinks := make([]events.EventSink, len(p.sinks))
	copy(sinks, p.sinks)
	logger := p.logger

	p.pubMu.Lock()
	p.mu.Unlock()
	defer p.pubMu.Unlock()

	for _, e := range evts {
		for _, s := range sinks {
			if err := s.PublishEvent(e); err != nil {
				logger.Warn().Err(err).
					Str("event_type", string(e.Type())).
					Msg("could not publish playback event")
			}
		}
	}
}

func (p *Player) metaLocked() events.EventMetadata {
	meta := events.EventMetadata{
		ID:        events.NewEventID(),
		SessionID: p.sessionID,
		TurnIndex: p.cursor,
	}
	if p.script != nil {
		meta.ScriptTitle = p.script.Title
	}
	return meta
}

func (p *Player) snapshotLocked() events.StateSnapshot {
	total := 0
	if p.script != nil {
		total = p.script.Len()
	}
	return events.StateSnapshot{
		Status:   string(p.status),
		Rate:     p.rate,
		DelayMs:  int(p.delay / time.Millisecond),
		Cursor:   p.cursor,
		Total:    total,
		Staging:  p.stagingLocked(),
		Progress: p.progressLocked(),
	}
}

// stagingLocked reports whether the current turn is being staged in the
// composer: combined layout, user text turn, reveal or dwell in progress.
func (p *Player) stagingLocked() bool {
	if p.layout != LayoutCombined || p.phase == phaseNone {
		return false
	}
	if p.script == nil || p.cursor >= p.script.Len() {
		return false
	}
	t := &p.script.Turns[p.cursor]
	return t.NormalizedKind() == script.KindMessage && t.Role == script.RoleUser
}

func (p *Player) partialLocked() string {
	if p.script == nil || p.cursor >= p.script.Len() || p.phase == phaseNone {
		return ""
	}
	runes := p.script.Turns[p.cursor].Runes()
	if p.pos >= len(runes) {
		return string(runes)
	}
	return string(runes[:p.pos])
}

// elapsedLocked returns how long the current phase has been running, pause
// windows excluded.
func (p *Player) elapsedLocked() time.Duration {
	if p.phase == phaseNone {
		return 0
	}
	e := p.phaseElapsed
	if p.status == StatusPlaying {
		e += p.clock.Now().Sub(p.phaseStart)
	}
	return e
}

func (p *Player) progressLocked() float64 {
	if p.script == nil || p.phase != phaseDwelling || p.cursor >= p.script.Len() {
		return 0
	}
	if !p.script.Turns[p.cursor].IsEvent() || p.phaseDur <= 0 {
		return 0
	}
	f := float64(p.elapsedLocked()) / float64(p.phaseDur)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func (p *Player) resetPhaseLocked() {
	p.pos = 0
	p.phase = phaseNone
	p.phaseStart = time.Time{}
	p.phaseElapsed = 0
	p.phaseDur = 0
}

func (p *Player) tickLocked() time.Duration {
	return time.Second / time.Duration(clampRate(p.rate))
}

// stopTimerLocked cancels the outstanding timer, if any, and invalidates any
// callback that already fired and is waiting on p.mu.
func (p *Player) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
}

// scheduleLocked arms the single playback timer. Any previously outstanding
// timer is invalidated first, there is never more than one.
func (p *Player) scheduleLocked(d time.Duration) {
	p.stopTimerLocked()
	gen := p.gen
	p.timer = p.clock.AfterFunc(d, func() {
		p.onTimer(gen)
	})
}

func (p *Player) onTimer(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.status != StatusPlaying {
		p.mu.Unlock()
		return
	}
	p.emit(p.stepLocked()...)
}

// stepLocked performs one timer-driven step: a reveal tick while revealing, a
// commit (and advance) when the dwell elapses.
func (p *Player) stepLocked() []events.Event {
	switch p.phase {
	case phaseRevealing:
		return p.revealStepLocked()
	case phaseDwelling:
		evts := p.commitLocked()
		evts = append(evts, p.advanceLocked()...)
		return append(evts, events.NewStateChangeEvent(p.metaLocked(), p.snapshotLocked()))
	default:
		return nil
	}
}

func (p *Player) revealStepLocked() []events.Event {
	t := &p.script.Turns[p.cursor]
	runes := t.Runes()
	if p.pos >= len(runes) {
		p.enterDwellLocked(p.delay)
		return nil
	}

	p.pos++
	delta := string(runes[p.pos-1 : p.pos])
	partial := string(runes[:p.pos])

	var ev events.Event
	if p.stagingLocked() {
		ev = events.NewComposerEvent(p.metaLocked(), delta, partial)
	} else {
		ev = events.NewRevealEvent(p.metaLocked(), delta, partial)
	}

	if p.pos >= len(runes) {
		p.enterDwellLocked(p.delay)
	} else {
		p.scheduleLocked(p.tickLocked())
	}
	return []events.Event{ev}
}

// enterDwellLocked moves the current turn into its dwell window and, while
// playing, arms the commit timer.
func (p *Player) enterDwellLocked(d time.Duration) {
	p.phase = phaseDwelling
	p.phaseStart = p.clock.Now()
	p.phaseElapsed = 0
	p.phaseDur = d
	if p.status == StatusPlaying {
		p.scheduleLocked(d)
	} else {
		p.stopTimerLocked()
	}
}

// startTurnLocked makes the turn at the cursor current: text turns begin
// revealing, event turns publish their tool payload and begin dwelling. The
// phase timer is armed only while playing.
func (p *Player) startTurnLocked() []events.Event {
	t := &p.script.Turns[p.cursor]
	meta := p.metaLocked()
	evts := []events.Event{events.NewTurnStartEvent(meta, t.NormalizedKind(), t.Role)}

	if t.IsEvent() {
		durationMs := int(t.Duration() / time.Millisecond)
		switch t.NormalizedKind() {
		case script.KindToolCall:
			evts = append(evts, events.NewToolCallEvent(meta, events.ToolCall{
				Name:  t.ToolCall.Name,
				Input: string(t.ToolCall.Args),
			}, durationMs))
		case script.KindToolResult:
			evts = append(evts, events.NewToolResultEvent(meta, events.ToolResult{
				Name:    t.ToolResult.Name,
				Result:  t.ToolResult.Output,
				Summary: t.ToolResult.Summary,
			}, durationMs))
		}
		p.pos = 0
		p.enterDwellLocked(t.Duration())
		return evts
	}

	p.pos = 0
	p.phase = phaseRevealing
	p.phaseStart = p.clock.Now()
	p.phaseElapsed = 0
	p.phaseDur = 0

	if len(t.Runes()) == 0 {
		// nothing to reveal, straight into the dwell
		p.enterDwellLocked(p.delay)
		return evts
	}
	if p.status == StatusPlaying {
		p.scheduleLocked(p.tickLocked())
	} else {
		p.stopTimerLocked()
	}
	return evts
}

// commitLocked moves the current turn into history. The commit event carries
// the turn's full content and the index it was committed at.
func (p *Player) commitLocked() []events.Event {
	t := p.script.Turns[p.cursor].Clone()
	meta := p.metaLocked()
	p.history = append(p.history, t)
	p.cursor++
	p.resetPhaseLocked()
	p.stopTimerLocked()

	p.logger.Debug().
		Int("turn_index", meta.TurnIndex).
		Str("kind", string(t.NormalizedKind())).
		Msg("turn committed")

	return []events.Event{events.NewCommitEvent(meta, t)}
}

// advanceLocked starts the next turn or finishes playback. When the player is
// not playing (a Next while idle or paused) the next turn stays pending and is
// started by the resume path.
func (p *Player) advanceLocked() []events.Event {
	if p.cursor >= p.script.Len() {
		p.status = StatusFinished
		p.stopTimerLocked()
		p.logger.Debug().Int("committed", p.cursor).Msg("playback finished")
		return []events.Event{events.NewFinishedEvent(p.metaLocked(), p.cursor)}
	}
	if p.status == StatusPlaying {
		return p.startTurnLocked()
	}
	return nil
}

// fillBufferLocked reveals the remainder of the current text turn in one step
// and returns the single reveal or composer event carrying it. Nil when the
// turn is already fully revealed.
func (p *Player) fillBufferLocked() []events.Event {
	t := &p.script.Turns[p.cursor]
	runes := t.Runes()
	if p.pos >= len(runes) {
		return nil
	}
	delta := string(runes[p.pos:])
	p.pos = len(runes)
	partial := string(runes)
	if p.stagingLocked() {
		return []events.Event{events.NewComposerEvent(p.metaLocked(), delta, partial)}
	}
	return []events.Event{events.NewRevealEvent(p.metaLocked(), delta, partial)}
}

// suspendLocked stops the timer and banks the elapsed phase time so a later
// resume continues where playback left off.
func (p *Player) suspendLocked() {
	p.stopTimerLocked()
	if p.phase != phaseNone {
		now := p.clock.Now()
		p.phaseElapsed += now.Sub(p.phaseStart)
		p.phaseStart = now
	}
	p.status = StatusPaused
}

func clampRate(rate int) int {
	if rate < 1 {
		return 1
	}
	return rate
}

func clampDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
