package script

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeInfersKindsAndRoles(t *testing.T) {
	s := &Script{
		Turns: []Turn{
			{Role: "User", Content: "hi"},
			{ToolCall: &ToolCall{Name: "search"}},
			{ToolResult: &ToolResult{Name: "search", Output: "ok"}},
			{Content: "no role"},
		},
	}
	s.Normalize()

	require.Equal(t, KindMessage, s.Turns[0].Kind)
	require.Equal(t, RoleUser, s.Turns[0].Role)
	require.Equal(t, KindToolCall, s.Turns[1].Kind)
	require.Equal(t, KindToolResult, s.Turns[2].Kind)
	require.Equal(t, RoleAssistant, s.Turns[3].Role)
	require.NoError(t, s.Validate())
}

func TestValidateRejectsBadTurns(t *testing.T) {
	cases := []struct {
		name string
		turn Turn
	}{
		{"both payloads", Turn{
			ToolCall:   &ToolCall{Name: "a"},
			ToolResult: &ToolResult{Name: "a"},
		}},
		{"unknown role", Turn{Role: "narrator", Content: "hi", Kind: KindMessage}},
		{"message with tool payload", Turn{
			Role: RoleUser, Kind: KindMessage, ToolCall: &ToolCall{Name: "a"},
		}},
		{"tool call without payload", Turn{Kind: KindToolCall}},
		{"tool call without name", Turn{Kind: KindToolCall, ToolCall: &ToolCall{}}},
		{"negative duration", Turn{
			Kind: KindToolCall, ToolCall: &ToolCall{Name: "a"}, DurationMs: -1,
		}},
		{"unknown kind", Turn{Kind: "interpretive_dance"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Script{Turns: []Turn{tc.turn}}
			require.Error(t, s.Validate())
		})
	}
}

func TestValidateAcceptsEmptyScript(t *testing.T) {
	s := &Script{}
	require.NoError(t, s.Validate())
	require.Equal(t, 0, s.Len())
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	assert.Equal(t, DefaultTypingSpeed, o.Rate())
	assert.Equal(t, DefaultMessageDelayMs*time.Millisecond, o.Delay())

	o = Options{TypingSpeed: IntPtr(2), MessageDelayMs: IntPtr(0)}
	assert.Equal(t, 2, o.Rate())
	assert.Equal(t, time.Duration(0), o.Delay())

	o = Options{TypingSpeed: IntPtr(0), MessageDelayMs: IntPtr(-10)}
	assert.Equal(t, 1, o.Rate(), "non-positive rate clamps to 1")
	assert.Equal(t, time.Duration(0), o.Delay())
}

func TestEventTurnDuration(t *testing.T) {
	call := NewToolCallTurn("search", nil, 0)
	assert.Equal(t, DefaultEventDurationMs*time.Millisecond, call.Duration())

	call = NewToolCallTurn("search", nil, 100)
	assert.Equal(t, 100*time.Millisecond, call.Duration())

	msg := NewTextTurn(RoleUser, "hi")
	assert.Equal(t, time.Duration(0), msg.Duration())
	assert.False(t, msg.IsEvent())
	assert.True(t, call.IsEvent())
}

func TestTurnText(t *testing.T) {
	msg := NewTextTurn(RoleAssistant, "héllo")
	assert.Equal(t, "héllo", msg.Text())
	assert.Len(t, msg.Runes(), 5)

	call := NewToolCallTurn("search", json.RawMessage(`{"q":"go"}`), 0)
	assert.Equal(t, "", call.Text())
	assert.Equal(t, "search", call.EventName())
}

func TestCloneIsDeep(t *testing.T) {
	s := &Script{
		Title:   "demo",
		Options: Options{TypingSpeed: IntPtr(10)},
		Turns: []Turn{
			NewToolCallTurn("search", json.RawMessage(`{"q":"go"}`), 50),
			NewTextTurn(RoleUser, "hi"),
		},
	}
	c := s.Clone()

	c.Turns[0].ToolCall.Name = "changed"
	c.Turns[0].ToolCall.Args[2] = 'x'
	*c.Options.TypingSpeed = 99

	require.Equal(t, "search", s.Turns[0].ToolCall.Name)
	require.Equal(t, json.RawMessage(`{"q":"go"}`), s.Turns[0].ToolCall.Args)
	require.Equal(t, 10, *s.Options.TypingSpeed)
}
