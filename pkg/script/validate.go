package script

import (
	"strings"

	"github.com/pkg/errors"
)

// Normalize rewrites the script into canonical form: roles lowercased, kinds
// made explicit, and text turns without a role attributed to the assistant.
// Parsers call this before Validate; callers assembling scripts by hand
// should do the same.
func (s *Script) Normalize() {
	for i := range s.Turns {
		t := &s.Turns[i]
		t.Role = Role(strings.ToLower(strings.TrimSpace(string(t.Role))))
		t.Kind = t.NormalizedKind()
		if t.Kind == KindMessage && t.Role == "" {
			t.Role = RoleAssistant
		}
	}
}

// Validate checks every turn and returns the first violation, annotated with
// the turn index. An empty script is valid.
func (s *Script) Validate() error {
	for i := range s.Turns {
		if err := s.Turns[i].Validate(); err != nil {
			return errors.Wrapf(err, "turn %d", i)
		}
	}
	return nil
}

// Validate checks the exactly-one-kind invariant and the payload the kind
// requires. Expects a normalized turn.
func (t *Turn) Validate() error {
	if t.ToolCall != nil && t.ToolResult != nil {
		return errors.New("both toolCall and toolResult set")
	}
	if t.DurationMs < 0 {
		return errors.Errorf("negative durationMs %d", t.DurationMs)
	}

	switch t.NormalizedKind() {
	case KindMessage:
		if t.ToolCall != nil || t.ToolResult != nil {
			return errors.New("message turn carries a tool payload")
		}
		switch t.Role {
		case RoleSystem, RoleUser, RoleAssistant:
		case "":
			return errors.New("message turn without role")
		default:
			return errors.Errorf("unknown role %q", t.Role)
		}
	case KindToolCall:
		if t.ToolCall == nil {
			return errors.New("tool_call turn without toolCall payload")
		}
		if t.ToolCall.Name == "" {
			return errors.New("tool_call turn without tool name")
		}
	case KindToolResult:
		if t.ToolResult == nil {
			return errors.New("tool_result turn without toolResult payload")
		}
		if t.ToolResult.Name == "" {
			return errors.New("tool_result turn without tool name")
		}
	default:
		return errors.Errorf("unknown kind %q", t.Kind)
	}
	return nil
}
