package events

import (
	"encoding/json"
	"fmt"

	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type EventType string

const (
	// EventTypeStart is emitted once when playback (re)starts from the top.
	EventTypeStart EventType = "start"
	// EventTypeTurnStart is emitted when a turn becomes current, before any
	// of its content is revealed.
	EventTypeTurnStart EventType = "turn-start"
	// EventTypeReveal carries one reveal step of the current transcript turn.
	EventTypeReveal EventType = "reveal"
	// EventTypeComposer carries one staging step of a user turn typed into
	// the composer (combined layout only).
	EventTypeComposer EventType = "composer"

	// Simulated tool activity of the current event turn
	EventTypeToolCall   EventType = "tool-call"
	EventTypeToolResult EventType = "tool-result"

	// EventTypeCommit is emitted when the current turn moves into history.
	EventTypeCommit EventType = "commit"
	// EventTypeState carries a full state snapshot; one is emitted on every
	// state change.
	EventTypeState EventType = "state"

	EventTypeFinished  EventType = "finished"
	EventTypeError     EventType = "error"
	EventTypeInterrupt EventType = "interrupt"
)

type Event interface {
	Type() EventType
	Metadata() EventMetadata
	Payload() []byte
}

type EventImpl struct {
	Type_     EventType     `json:"type"`
	Error_    error         `json:"error,omitempty"`
	Metadata_ EventMetadata `json:"meta,omitempty"`

	// raw JSON the event was deserialized from (see NewEventFromJson)
	payload []byte
}

func (e *EventImpl) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type_))

	if e.Error_ != nil {
		ev.Err(e.Error_)
	}

	ev.Object("meta", e.Metadata_)
}

func (e *EventImpl) Type() EventType {
	return e.Type_
}

func (e *EventImpl) Error() error {
	return e.Error_
}

func (e *EventImpl) Metadata() EventMetadata {
	return e.Metadata_
}

func (e *EventImpl) Payload() []byte {
	return e.payload
}

// SetPayload stores the raw JSON payload on the event implementation.
func (e *EventImpl) SetPayload(b []byte) {
	e.payload = b
}

var _ Event = &EventImpl{}

// NewEventID returns a fresh metadata ID.
func NewEventID() uuid.UUID {
	return uuid.New()
}

// EventMetadata travels with every watermill message published by a player.
type EventMetadata struct {
	ID uuid.UUID `json:"message_id" yaml:"message_id"`
	// SessionID identifies the player instance that produced the event.
	SessionID string `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	// ScriptTitle is the title of the loaded script, if any.
	ScriptTitle string `json:"script_title,omitempty" yaml:"script_title,omitempty"`
	// TurnIndex is the cursor position the event refers to.
	TurnIndex int `json:"turn_index" yaml:"turn_index"`

	Extra map[string]interface{} `json:"extra,omitempty" yaml:"extra,omitempty"`
}

func (em EventMetadata) MarshalZerologObject(e *zerolog.Event) {
	e.Str("message_id", em.ID.String())
	if em.SessionID != "" {
		e.Str("session_id", em.SessionID)
	}
	if em.ScriptTitle != "" {
		e.Str("script_title", em.ScriptTitle)
	}
	e.Int("turn_index", em.TurnIndex)
	if len(em.Extra) > 0 {
		e.Dict("extra", zerolog.Dict().Fields(em.Extra))
	}
}

// StateSnapshot is the read-only view of a player handed to subscribers on
// every state change and returned by the player's State query.
type StateSnapshot struct {
	Status  string `json:"status"`
	Rate    int    `json:"rate"`
	DelayMs int    `json:"delayMs"`
	Cursor  int    `json:"cursor"`
	Total   int    `json:"total"`
	// Staging is true while a user turn is being typed into the composer.
	Staging bool `json:"staging"`
	// Progress is the dwell fraction of the current event turn in [0,1];
	// zero for text turns.
	Progress float64 `json:"progress,omitempty"`
}

func (s StateSnapshot) MarshalZerologObject(e *zerolog.Event) {
	e.Str("status", s.Status).
		Int("rate", s.Rate).
		Int("delay_ms", s.DelayMs).
		Int("cursor", s.Cursor).
		Int("total", s.Total).
		Bool("staging", s.Staging)
	if s.Progress > 0 {
		e.Float64("progress", s.Progress)
	}
}

type EventPlaybackStart struct {
	EventImpl
	TotalTurns int `json:"total_turns"`
}

func NewStartEvent(metadata EventMetadata, totalTurns int) *EventPlaybackStart {
	return &EventPlaybackStart{
		EventImpl: EventImpl{
			Type_:     EventTypeStart,
			Metadata_: metadata,
			payload:   nil,
		},
		TotalTurns: totalTurns,
	}
}

var _ Event = &EventPlaybackStart{}

type EventTurnStart struct {
	EventImpl
	Kind script.Kind `json:"kind"`
	Role script.Role `json:"role,omitempty"`
}

func NewTurnStartEvent(metadata EventMetadata, kind script.Kind, role script.Role) *EventTurnStart {
	return &EventTurnStart{
		EventImpl: EventImpl{
			Type_:     EventTypeTurnStart,
			Metadata_: metadata,
			payload:   nil,
		},
		Kind: kind,
		Role: role,
	}
}

var _ Event = &EventTurnStart{}

// EventReveal is one character step of the current turn. Partial is the
// complete revealed text so far, Delta the newly added piece. A skip emits a
// single reveal with the whole remainder as Delta.
type EventReveal struct {
	EventImpl
	Delta   string `json:"delta"`
	Partial string `json:"partial"`
}

func NewRevealEvent(metadata EventMetadata, delta string, partial string) *EventReveal {
	return &EventReveal{
		EventImpl: EventImpl{
			Type_:     EventTypeReveal,
			Metadata_: metadata,
			payload:   nil,
		},
		Delta:   delta,
		Partial: partial,
	}
}

var _ Event = &EventReveal{}

// EventComposer mirrors EventReveal for user turns staged in the composer.
type EventComposer struct {
	EventImpl
	Delta  string `json:"delta"`
	Staged string `json:"staged"`
}

func NewComposerEvent(metadata EventMetadata, delta string, staged string) *EventComposer {
	return &EventComposer{
		EventImpl: EventImpl{
			Type_:     EventTypeComposer,
			Metadata_: metadata,
			payload:   nil,
		},
		Delta:  delta,
		Staged: staged,
	}
}

var _ Event = &EventComposer{}

type ToolCall struct {
	Name  string `json:"name"`
	Input string `json:"input"`
}

type EventToolCall struct {
	EventImpl
	ToolCall ToolCall `json:"tool_call"`
	// DurationMs is how long the call stays current before committing.
	DurationMs int `json:"duration_ms"`
}

func NewToolCallEvent(metadata EventMetadata, toolCall ToolCall, durationMs int) *EventToolCall {
	return &EventToolCall{
		EventImpl: EventImpl{
			Type_:     EventTypeToolCall,
			Metadata_: metadata,
			payload:   nil,
		},
		ToolCall:   toolCall,
		DurationMs: durationMs,
	}
}

var _ Event = &EventToolCall{}

type ToolResult struct {
	Name    string `json:"name"`
	Result  string `json:"result"`
	Summary string `json:"summary,omitempty"`
}

type EventToolResult struct {
	EventImpl
	ToolResult ToolResult `json:"tool_result"`
	DurationMs int        `json:"duration_ms"`
}

func NewToolResultEvent(metadata EventMetadata, toolResult ToolResult, durationMs int) *EventToolResult {
	return &EventToolResult{
		EventImpl: EventImpl{
			Type_:     EventTypeToolResult,
			Metadata_: metadata,
			payload:   nil,
		},
		ToolResult: toolResult,
		DurationMs: durationMs,
	}
}

var _ Event = &EventToolResult{}

type EventTurnCommit struct {
	EventImpl
	Turn script.Turn `json:"turn"`
}

func NewCommitEvent(metadata EventMetadata, turn script.Turn) *EventTurnCommit {
	return &EventTurnCommit{
		EventImpl: EventImpl{
			Type_:     EventTypeCommit,
			Metadata_: metadata,
			payload:   nil,
		},
		Turn: turn,
	}
}

var _ Event = &EventTurnCommit{}

type EventStateChange struct {
	EventImpl
	State StateSnapshot `json:"state"`
}

func NewStateChangeEvent(metadata EventMetadata, state StateSnapshot) *EventStateChange {
	return &EventStateChange{
		EventImpl: EventImpl{
			Type_:     EventTypeState,
			Metadata_: metadata,
			payload:   nil,
		},
		State: state,
	}
}

var _ Event = &EventStateChange{}

type EventPlaybackFinished struct {
	EventImpl
	Committed int `json:"committed"`
}

func NewFinishedEvent(metadata EventMetadata, committed int) *EventPlaybackFinished {
	return &EventPlaybackFinished{
		EventImpl: EventImpl{
			Type_:     EventTypeFinished,
			Metadata_: metadata,
			payload:   nil,
		},
		Committed: committed,
	}
}

var _ Event = &EventPlaybackFinished{}

type EventError struct {
	EventImpl
	ErrorString string `json:"error_string"`
}

func NewErrorEvent(metadata EventMetadata, err error) *EventError {
	return &EventError{
		EventImpl: EventImpl{
			Type_:     EventTypeError,
			Metadata_: metadata,
			payload:   nil,
		},
		ErrorString: err.Error(),
	}
}

var _ Event = &EventError{}

type EventInterrupt struct {
	EventImpl
	Text string `json:"text"`
}

func NewInterruptEvent(metadata EventMetadata, text string) *EventInterrupt {
	return &EventInterrupt{
		EventImpl: EventImpl{
			Type_:     EventTypeInterrupt,
			Metadata_: metadata,
			payload:   nil,
		},
		Text: text,
	}
}

var _ Event = &EventInterrupt{}

func NewEventFromJson(b []byte) (Event, error) {
	var e *EventImpl
	err := json.Unmarshal(b, &e)
	if err != nil {
		return nil, err
	}

	e.payload = b

	switch e.Type_ {
	case EventTypeStart:
		ret, ok := ToTypedEvent[EventPlaybackStart](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventPlaybackStart")
		}
		return ret, nil
	case EventTypeTurnStart:
		ret, ok := ToTypedEvent[EventTurnStart](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventTurnStart")
		}
		return ret, nil
	case EventTypeReveal:
		ret, ok := ToTypedEvent[EventReveal](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventReveal")
		}
		return ret, nil
	case EventTypeComposer:
		ret, ok := ToTypedEvent[EventComposer](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventComposer")
		}
		return ret, nil
	case EventTypeToolCall:
		ret, ok := ToTypedEvent[EventToolCall](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventToolCall")
		}
		return ret, nil
	case EventTypeToolResult:
		ret, ok := ToTypedEvent[EventToolResult](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventToolResult")
		}
		return ret, nil
	case EventTypeCommit:
		ret, ok := ToTypedEvent[EventTurnCommit](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventTurnCommit")
		}
		return ret, nil
	case EventTypeState:
		ret, ok := ToTypedEvent[EventStateChange](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventStateChange")
		}
		return ret, nil
	case EventTypeFinished:
		ret, ok := ToTypedEvent[EventPlaybackFinished](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventPlaybackFinished")
		}
		return ret, nil
	case EventTypeError:
		ret, ok := ToTypedEvent[EventError](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventError")
		}
		return ret, nil
	case EventTypeInterrupt:
		ret, ok := ToTypedEvent[EventInterrupt](e)
		if !ok {
			return nil, fmt.Errorf("could not cast event to EventInterrupt")
		}
		return ret, nil
	}

	return e, nil
}

func ToTypedEvent[T any](e Event) (*T, bool) {
	var ret *T
	err := json.Unmarshal(e.Payload(), &ret)
	if err != nil {
		return nil, false
	}

	return ret, true
}

func (e EventPlaybackStart) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Int("total_turns", e.TotalTurns)
}

func (e EventTurnStart) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Str("kind", string(e.Kind)).Str("role", string(e.Role))
}

func (e EventReveal) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Str("delta", e.Delta).Str("partial", e.Partial)
}

func (e EventComposer) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Str("delta", e.Delta).Str("staged", e.Staged)
}

func (tc ToolCall) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("name", tc.Name).Str("input", tc.Input)
}

func (e EventToolCall) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Object("tool_call", e.ToolCall)
	ev.Int("duration_ms", e.DurationMs)
}

func (tr ToolResult) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("name", tr.Name).Str("result", tr.Result)
	if tr.Summary != "" {
		ev.Str("summary", tr.Summary)
	}
}

func (e EventToolResult) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Object("tool_result", e.ToolResult)
}

func (e EventTurnCommit) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Str("kind", string(e.Turn.NormalizedKind())).Str("role", string(e.Turn.Role))
}

func (e EventStateChange) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Object("state", e.State)
}

func (e EventPlaybackFinished) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Int("committed", e.Committed)
}

func (e EventError) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Str("error", e.ErrorString)
}

func (e EventInterrupt) MarshalZerologObject(ev *zerolog.Event) {
	e.EventImpl.MarshalZerologObject(ev)
	ev.Str("text", e.Text)
}
