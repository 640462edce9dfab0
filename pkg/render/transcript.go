// Package render turns committed script turns into terminal output: a plain
// transcript in the `[role]: text` shape, a glamour-styled markdown document,
// machine-readable JSON/YAML turn dumps, and OSC 8 hyperlink annotation for
// links mentioned in the conversation.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

type TranscriptOptions struct {
	Format Format
	// Title heads the markdown document, ignored for text.
	Title string
	// Style is the glamour style for markdown output, "dark" when empty.
	Style string
	// Links rewrites detected links as OSC 8 anchors (text format only).
	Links bool
	// LinkBase resolves root-relative link targets, see Annotate.
	LinkBase string
}

// Transcript writes the turns as a conversation transcript.
func Transcript(w io.Writer, turns []script.Turn, opts TranscriptOptions) error {
	switch opts.Format {
	case FormatMarkdown:
		style := opts.Style
		if style == "" {
			style = "dark"
		}
		styled, err := glamour.Render(markdownDocument(turns, opts.Title), style)
		if err != nil {
			return errors.Wrap(err, "could not render markdown transcript")
		}
		_, err = io.WriteString(w, styled)
		return err
	case FormatJSON:
		data, err := json.MarshalIndent(turns, "", "  ")
		if err != nil {
			return errors.Wrap(err, "could not marshal transcript")
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(turns)
		if err != nil {
			return errors.Wrap(err, "could not marshal transcript")
		}
		_, err = w.Write(data)
		return err
	case FormatText, "":
		text := textDocument(turns)
		if opts.Links {
			text = Annotate(text, opts.LinkBase)
		}
		_, err := io.WriteString(w, text)
		return err
	default:
		return errors.Errorf("unknown transcript format %s", opts.Format)
	}
}

func textDocument(turns []script.Turn) string {
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(TurnText(t))
		sb.WriteString("\n")
	}
	return sb.String()
}

// TurnText renders one turn in the `[role]: text` shape shared by the plain
// transcript and the TUI bubbles.
func TurnText(t script.Turn) string {
	switch t.NormalizedKind() {
	case script.KindToolCall:
		if args := compactJSON(t.ToolCall.Args); args != "" {
			return fmt.Sprintf("[tool_call] %s: %s", t.ToolCall.Name, args)
		}
		return fmt.Sprintf("[tool_call] %s", t.ToolCall.Name)
	case script.KindToolResult:
		out := t.ToolResult.Summary
		if out == "" {
			out = t.ToolResult.Output
		}
		return fmt.Sprintf("[tool_result] %s: %s", t.ToolResult.Name, strings.TrimRight(out, "\n"))
	default:
		return fmt.Sprintf("[%s]: %s", t.Role, strings.TrimRight(t.Content, "\n"))
	}
}

func markdownDocument(turns []script.Turn, title string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString("# ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	for _, t := range turns {
		switch t.NormalizedKind() {
		case script.KindToolCall:
			sb.WriteString(fmt.Sprintf("**tool call** `%s`\n\n", t.ToolCall.Name))
			if args := compactJSON(t.ToolCall.Args); args != "" {
				sb.WriteString("```json\n")
				sb.WriteString(args)
				sb.WriteString("\n```\n\n")
			}
		case script.KindToolResult:
			sb.WriteString(fmt.Sprintf("**tool result** `%s`\n\n", t.ToolResult.Name))
			if t.ToolResult.Summary != "" {
				sb.WriteString(t.ToolResult.Summary)
				sb.WriteString("\n\n")
			}
			if t.ToolResult.Output != "" {
				sb.WriteString("```\n")
				sb.WriteString(strings.TrimRight(t.ToolResult.Output, "\n"))
				sb.WriteString("\n```\n\n")
			}
		default:
			sb.WriteString(fmt.Sprintf("**%s**: %s\n\n", t.Role, strings.TrimRight(t.Content, "\n")))
		}
	}
	return sb.String()
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
