package events

import (
	"encoding/json"
	"testing"

	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() EventMetadata {
	return EventMetadata{
		ID:          uuid.New(),
		SessionID:   "session-1",
		ScriptTitle: "demo",
		TurnIndex:   2,
	}
}

func roundTrip(t *testing.T, e Event) Event {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	back, err := NewEventFromJson(b)
	require.NoError(t, err)
	return back
}

func TestRevealEventRoundTrip(t *testing.T) {
	meta := testMetadata()
	back := roundTrip(t, NewRevealEvent(meta, "i", "hi"))

	reveal, ok := back.(*EventReveal)
	require.True(t, ok)
	assert.Equal(t, EventTypeReveal, reveal.Type())
	assert.Equal(t, "i", reveal.Delta)
	assert.Equal(t, "hi", reveal.Partial)
	assert.Equal(t, meta.ID, reveal.Metadata().ID)
	assert.Equal(t, 2, reveal.Metadata().TurnIndex)
}

func TestComposerEventRoundTrip(t *testing.T) {
	back := roundTrip(t, NewComposerEvent(testMetadata(), "h", "h"))

	composer, ok := back.(*EventComposer)
	require.True(t, ok)
	assert.Equal(t, "h", composer.Staged)
}

func TestToolCallEventRoundTrip(t *testing.T) {
	call := ToolCall{Name: "search", Input: `{"q":"go"}`}
	back := roundTrip(t, NewToolCallEvent(testMetadata(), call, 100))

	ev, ok := back.(*EventToolCall)
	require.True(t, ok)
	assert.Equal(t, call, ev.ToolCall)
	assert.Equal(t, 100, ev.DurationMs)
}

func TestToolResultEventRoundTrip(t *testing.T) {
	result := ToolResult{Name: "search", Result: "OK", Summary: "1 hit"}
	back := roundTrip(t, NewToolResultEvent(testMetadata(), result, 1200))

	ev, ok := back.(*EventToolResult)
	require.True(t, ok)
	assert.Equal(t, result, ev.ToolResult)
}

func TestCommitEventCarriesTurn(t *testing.T) {
	turn := script.NewTextTurn(script.RoleUser, "hi")
	back := roundTrip(t, NewCommitEvent(testMetadata(), turn))

	ev, ok := back.(*EventTurnCommit)
	require.True(t, ok)
	assert.Equal(t, script.RoleUser, ev.Turn.Role)
	assert.Equal(t, "hi", ev.Turn.Content)
}

func TestStateChangeEventRoundTrip(t *testing.T) {
	state := StateSnapshot{
		Status:  "playing",
		Rate:    35,
		DelayMs: 500,
		Cursor:  1,
		Total:   4,
		Staging: true,
	}
	back := roundTrip(t, NewStateChangeEvent(testMetadata(), state))

	ev, ok := back.(*EventStateChange)
	require.True(t, ok)
	assert.Equal(t, state, ev.State)
}

func TestErrorAndFinishedEvents(t *testing.T) {
	errEv, ok := roundTrip(t, NewErrorEvent(testMetadata(), assert.AnError)).(*EventError)
	require.True(t, ok)
	assert.Contains(t, errEv.ErrorString, "assert.AnError")

	fin, ok := roundTrip(t, NewFinishedEvent(testMetadata(), 4)).(*EventPlaybackFinished)
	require.True(t, ok)
	assert.Equal(t, 4, fin.Committed)
}

func TestNewEventFromJsonRejectsGarbage(t *testing.T) {
	_, err := NewEventFromJson([]byte("not json"))
	require.Error(t, err)
}

func TestNewEventFromJsonUnknownTypeFallsBack(t *testing.T) {
	e, err := NewEventFromJson([]byte(`{"type":"mystery"}`))
	require.NoError(t, err)
	assert.Equal(t, EventType("mystery"), e.Type())
}

func TestCollectorSinkKeepsOrder(t *testing.T) {
	sink := NewCollectorSink()
	meta := testMetadata()

	require.NoError(t, sink.PublishEvent(NewStartEvent(meta, 2)))
	require.NoError(t, sink.PublishEvent(NewRevealEvent(meta, "h", "h")))
	require.NoError(t, sink.PublishEvent(NewCommitEvent(meta, script.NewTextTurn(script.RoleUser, "h"))))

	assert.Equal(t, []EventType{EventTypeStart, EventTypeReveal, EventTypeCommit}, sink.Types())
	assert.Len(t, sink.Events(), 3)

	sink.Reset()
	assert.Empty(t, sink.Events())
}
