// Package script defines the conversation script model replayed by the player:
// an ordered list of turns (chat messages and simulated tool events) plus
// pacing options. Scripts can be parsed from JSON, YAML or a line-oriented
// plain text format.
package script

import (
	"encoding/json"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind discriminates text turns from simulated tool events.
type Kind string

const (
	KindMessage    Kind = "message"
	KindToolCall   Kind = "tool_call"
	KindToolResult Kind = "tool_result"
)

const (
	// DefaultTypingSpeed is the reveal rate in characters per second when the
	// script options leave typingSpeed unset.
	DefaultTypingSpeed = 35
	// DefaultMessageDelayMs is the dwell after a fully revealed turn when the
	// script options leave messageDelayMs unset.
	DefaultMessageDelayMs = 500
	// DefaultEventDurationMs is the dwell of a tool call/result turn without an
	// explicit durationMs.
	DefaultEventDurationMs = 1200
)

// ToolCall names a simulated tool invocation. Args is kept opaque so scripts
// can carry whatever argument shape the tool being mimicked uses.
type ToolCall struct {
	Name string          `json:"name" yaml:"name"`
	Args json.RawMessage `json:"args,omitempty" yaml:"args,omitempty"`
}

// ToolResult carries the simulated outcome of a tool call. Summary, when set,
// is the short line renderers show collapsed instead of the full output.
type ToolResult struct {
	Name    string `json:"name" yaml:"name"`
	Output  string `json:"output" yaml:"output"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Turn is a single script entry. Exactly one kind applies: a text message
// (role + content), a tool call, or a tool result. Turns are treated as
// immutable once part of a Script.
type Turn struct {
	Role    Role   `json:"role,omitempty" yaml:"role,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	// Kind may be left empty in authored scripts; Normalize infers it from
	// which payload is present.
	Kind       Kind        `json:"kind,omitempty" yaml:"kind,omitempty"`
	ToolCall   *ToolCall   `json:"toolCall,omitempty" yaml:"toolCall,omitempty"`
	ToolResult *ToolResult `json:"toolResult,omitempty" yaml:"toolResult,omitempty"`
	// DurationMs is how long an event turn stays current before committing.
	// Zero means DefaultEventDurationMs. Ignored for text turns.
	DurationMs int `json:"durationMs,omitempty" yaml:"durationMs,omitempty"`
}

// Options control playback pacing. Both fields distinguish "absent" (nil,
// fall back to the default) from an explicit zero: messageDelayMs: 0 is a
// legitimate no-dwell script.
type Options struct {
	TypingSpeed    *int `json:"typingSpeed,omitempty" yaml:"typingSpeed,omitempty"`
	MessageDelayMs *int `json:"messageDelayMs,omitempty" yaml:"messageDelayMs,omitempty"`
}

// Script is a full conversation to replay. The zero value is a valid empty
// script. Scripts are caller-owned; the player never mutates them.
type Script struct {
	Title   string  `json:"title,omitempty" yaml:"title,omitempty"`
	Options Options `json:"options,omitempty" yaml:"options,omitempty"`
	Turns   []Turn  `json:"messages" yaml:"messages"`
}

// NewTextTurn returns a message turn.
func NewTextTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, Kind: KindMessage}
}

// NewToolCallTurn returns a tool call turn. args may be nil.
func NewToolCallTurn(name string, args json.RawMessage, durationMs int) Turn {
	return Turn{
		Kind:       KindToolCall,
		ToolCall:   &ToolCall{Name: name, Args: args},
		DurationMs: durationMs,
	}
}

// NewToolResultTurn returns a tool result turn.
func NewToolResultTurn(name string, output string, summary string) Turn {
	return Turn{
		Kind:       KindToolResult,
		ToolResult: &ToolResult{Name: name, Output: output, Summary: summary},
	}
}

// NormalizedKind returns the effective kind, inferring it from the payload
// when Kind is unset.
func (t *Turn) NormalizedKind() Kind {
	if t.Kind != "" {
		return t.Kind
	}
	switch {
	case t.ToolCall != nil:
		return KindToolCall
	case t.ToolResult != nil:
		return KindToolResult
	default:
		return KindMessage
	}
}

// IsEvent reports whether the turn is a tool call or tool result. Event turns
// skip character reveal and dwell for Duration instead.
func (t *Turn) IsEvent() bool {
	k := t.NormalizedKind()
	return k == KindToolCall || k == KindToolResult
}

// Text returns the turn content revealed character by character. Empty for
// event turns.
func (t *Turn) Text() string {
	if t.IsEvent() {
		return ""
	}
	return t.Content
}

// Runes returns the reveal units of the turn content. Reveal operates on
// runes so multi-byte text animates one character at a time.
func (t *Turn) Runes() []rune {
	return []rune(t.Text())
}

// Duration returns how long an event turn dwells before committing,
// independent of the script's message delay. Zero for text turns, whose dwell
// is the message delay.
func (t *Turn) Duration() time.Duration {
	if !t.IsEvent() {
		return 0
	}
	if t.DurationMs > 0 {
		return time.Duration(t.DurationMs) * time.Millisecond
	}
	return DefaultEventDurationMs * time.Millisecond
}

// EventName returns the tool name of an event turn, or "" for text turns.
func (t *Turn) EventName() string {
	switch t.NormalizedKind() {
	case KindToolCall:
		if t.ToolCall != nil {
			return t.ToolCall.Name
		}
	case KindToolResult:
		if t.ToolResult != nil {
			return t.ToolResult.Name
		}
	}
	return ""
}

// Clone returns a deep copy of the turn.
func (t Turn) Clone() Turn {
	c := t
	if t.ToolCall != nil {
		tc := *t.ToolCall
		if t.ToolCall.Args != nil {
			tc.Args = append(json.RawMessage(nil), t.ToolCall.Args...)
		}
		c.ToolCall = &tc
	}
	if t.ToolResult != nil {
		tr := *t.ToolResult
		c.ToolResult = &tr
	}
	return c
}

// Rate returns the effective reveal rate in characters per second. An
// explicit non-positive typingSpeed clamps to 1 so tick intervals stay
// finite; absence means DefaultTypingSpeed.
func (o Options) Rate() int {
	if o.TypingSpeed == nil {
		return DefaultTypingSpeed
	}
	if *o.TypingSpeed < 1 {
		return 1
	}
	return *o.TypingSpeed
}

// Delay returns the effective dwell after a fully revealed text turn. An
// explicit zero (or negative) value means no dwell; absence means
// DefaultMessageDelayMs.
func (o Options) Delay() time.Duration {
	if o.MessageDelayMs == nil {
		return DefaultMessageDelayMs * time.Millisecond
	}
	if *o.MessageDelayMs < 0 {
		return 0
	}
	return time.Duration(*o.MessageDelayMs) * time.Millisecond
}

// Rate is a convenience for s.Options.Rate.
func (s *Script) Rate() int {
	return s.Options.Rate()
}

// Delay is a convenience for s.Options.Delay.
func (s *Script) Delay() time.Duration {
	return s.Options.Delay()
}

// Len returns the number of turns.
func (s *Script) Len() int {
	return len(s.Turns)
}

// Clone returns a deep copy of the script.
func (s *Script) Clone() *Script {
	if s == nil {
		return nil
	}
	c := &Script{Title: s.Title}
	if s.Options.TypingSpeed != nil {
		v := *s.Options.TypingSpeed
		c.Options.TypingSpeed = &v
	}
	if s.Options.MessageDelayMs != nil {
		v := *s.Options.MessageDelayMs
		c.Options.MessageDelayMs = &v
	}
	if s.Turns != nil {
		c.Turns = make([]Turn, len(s.Turns))
		for i, t := range s.Turns {
			c.Turns[i] = t.Clone()
		}
	}
	return c
}

// IntPtr is a small helper for building Options literals.
func IntPtr(v int) *int {
	return &v
}
