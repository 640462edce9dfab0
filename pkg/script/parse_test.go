package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoJSON = `{
  "title": "demo",
  "options": {"typingSpeed": 2, "messageDelayMs": 0},
  "messages": [
    {"role": "user", "content": "hi"},
    {"kind": "tool_call", "toolCall": {"name": "search", "args": {"q": "go"}}, "durationMs": 100},
    {"kind": "tool_result", "toolResult": {"name": "search", "output": "OK", "summary": "1 hit"}},
    {"role": "assistant", "content": "done"}
  ]
}`

func TestParseJSONFullShape(t *testing.T) {
	s, err := ParseJSON([]byte(demoJSON))
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Title)
	assert.Equal(t, 2, s.Rate())
	assert.Equal(t, int64(0), s.Delay().Milliseconds())
	require.Equal(t, 4, s.Len())

	assert.Equal(t, KindToolCall, s.Turns[1].Kind)
	assert.Equal(t, "search", s.Turns[1].ToolCall.Name)
	assert.JSONEq(t, `{"q":"go"}`, string(s.Turns[1].ToolCall.Args))
	assert.Equal(t, 100, s.Turns[1].DurationMs)

	assert.Equal(t, KindToolResult, s.Turns[2].Kind)
	assert.Equal(t, "OK", s.Turns[2].ToolResult.Output)
	assert.Equal(t, "1 hit", s.Turns[2].ToolResult.Summary)
}

func TestParseJSONInfersKinds(t *testing.T) {
	s, err := ParseJSON([]byte(`{"messages":[{"toolCall":{"name":"fetch"}}]}`))
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.Equal(t, KindToolCall, s.Turns[0].Kind)
}

func TestParseJSONRejectsInvalidScript(t *testing.T) {
	_, err := ParseJSON([]byte(`{"messages":[{"kind":"tool_call"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "turn 0")

	_, err = ParseJSON([]byte(`not json`))
	require.Error(t, err)
}

func TestParseYAMLToolArgs(t *testing.T) {
	doc := `
title: demo
messages:
  - role: user
    content: hi
  - kind: tool_call
    toolCall:
      name: search
      args:
        q: go
        limit: 3
`
	s, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.JSONEq(t, `{"q":"go","limit":3}`, string(s.Turns[1].ToolCall.Args))
}

func TestScriptYAMLRoundTrip(t *testing.T) {
	orig, err := ParseJSON([]byte(demoJSON))
	require.NoError(t, err)

	out, err := ToYAML(orig)
	require.NoError(t, err)

	back, err := ParseYAML(out)
	require.NoError(t, err)

	require.Equal(t, orig.Len(), back.Len())
	assert.Equal(t, orig.Title, back.Title)
	assert.Equal(t, orig.Turns[0], back.Turns[0])
	assert.Equal(t, orig.Turns[1].Kind, back.Turns[1].Kind)
	assert.JSONEq(t, string(orig.Turns[1].ToolCall.Args), string(back.Turns[1].ToolCall.Args))
}

func TestToJSONEndsWithNewline(t *testing.T) {
	s := &Script{Turns: []Turn{NewTextTurn(RoleUser, "hi")}}
	b, err := ToJSON(s)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), b[len(b)-1])
}
