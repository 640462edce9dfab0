package ui

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/pkg/errors"
)

// Messages forwarded from the playback event stream into the bubbletea
// program. Index is the cursor position of the turn the event belongs to.

type PlaybackStartMsg struct {
	Total int
}

type TurnStartMsg struct {
	Index int
	Kind  script.Kind
	Role  script.Role
}

type RevealMsg struct {
	Index   int
	Delta   string
	Partial string
}

type ComposerMsg struct {
	Index  int
	Delta  string
	Staged string
}

type ToolCallMsg struct {
	Index      int
	Name       string
	Input      string
	DurationMs int
}

type ToolResultMsg struct {
	Index      int
	Name       string
	Result     string
	Summary    string
	DurationMs int
}

type CommitMsg struct {
	Index int
	Turn  script.Turn
}

type StateMsg struct {
	State events.StateSnapshot
}

type FinishedMsg struct {
	Committed int
}

type PlaybackErrorMsg struct {
	Err error
}

type InterruptMsg struct {
	Text string
}

// PlaybackForwardFunc returns a watermill handler that translates playback
// events into tea messages for p. The message is acked before p.Send so that
// a blocked program loop can never hold up the publisher.
func PlaybackForwardFunc(p *tea.Program) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		msg.Ack()

		e, err := events.NewEventFromJson(msg.Payload)
		if err != nil {
			return err
		}

		idx := e.Metadata().TurnIndex

		switch e_ := e.(type) {
		case *events.EventPlaybackStart:
			p.Send(PlaybackStartMsg{
				Total: e_.TotalTurns,
			})
		case *events.EventTurnStart:
			p.Send(TurnStartMsg{
				Index: idx,
				Kind:  e_.Kind,
				Role:  e_.Role,
			})
		case *events.EventReveal:
			p.Send(RevealMsg{
				Index:   idx,
				Delta:   e_.Delta,
				Partial: e_.Partial,
			})
		case *events.EventComposer:
			p.Send(ComposerMsg{
				Index:  idx,
				Delta:  e_.Delta,
				Staged: e_.Staged,
			})
		case *events.EventToolCall:
			p.Send(ToolCallMsg{
				Index:      idx,
				Name:       e_.ToolCall.Name,
				Input:      e_.ToolCall.Input,
				DurationMs: e_.DurationMs,
			})
		case *events.EventToolResult:
			p.Send(ToolResultMsg{
				Index:      idx,
				Name:       e_.ToolResult.Name,
				Result:     e_.ToolResult.Result,
				Summary:    e_.ToolResult.Summary,
				DurationMs: e_.DurationMs,
			})
		case *events.EventTurnCommit:
			p.Send(CommitMsg{
				Index: idx,
				Turn:  e_.Turn,
			})
		case *events.EventStateChange:
			p.Send(StateMsg{
				State: e_.State,
			})
		case *events.EventPlaybackFinished:
			p.Send(FinishedMsg{
				Committed: e_.Committed,
			})
		case *events.EventError:
			p.Send(PlaybackErrorMsg{
				Err: errors.New(e_.ErrorString),
			})

		case *events.EventInterrupt:
			p_, ok := events.ToTypedEvent[events.EventInterrupt](e)
			if !ok {
				return errors.New("payload is not of type EventInterrupt")
			}
			p.Send(InterruptMsg{
				Text: p_.Text,
			})
		}

		return nil
	}
}
