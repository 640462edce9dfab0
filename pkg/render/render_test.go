package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func demoTurns() []script.Turn {
	return []script.Turn{
		script.NewTextTurn(script.RoleUser, "What is the weather?"),
		script.NewToolCallTurn("search", json.RawMessage(`{"q": "weather"}`), 100),
		script.NewToolResultTurn("search", "Sunny with a high of 24.\nLow of 12 overnight.", "Sunny, 24 high"),
		script.NewTextTurn(script.RoleAssistant, "Sunny, around 24 degrees.\n"),
	}
}

func TestTranscriptText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Transcript(&buf, demoTurns(), TranscriptOptions{Format: FormatText}))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "[user]: What is the weather?", lines[0])
	assert.Equal(t, `[tool_call] search: {"q":"weather"}`, lines[2])
	// the summary stands in for the full output
	assert.Equal(t, "[tool_result] search: Sunny, 24 high", lines[4])
	assert.Equal(t, "[assistant]: Sunny, around 24 degrees.", lines[6])
}

func TestTranscriptTextWithoutSummaryUsesOutput(t *testing.T) {
	turns := []script.Turn{script.NewToolResultTurn("search", "raw output", "")}
	var buf bytes.Buffer
	require.NoError(t, Transcript(&buf, turns, TranscriptOptions{Format: FormatText}))
	assert.Equal(t, "[tool_result] search: raw output\n", buf.String())
}

func TestTranscriptMarkdown(t *testing.T) {
	var buf bytes.Buffer
	err := Transcript(&buf, demoTurns(), TranscriptOptions{
		Format: FormatMarkdown,
		Title:  "Weather demo",
		Style:  "notty",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Weather demo")
	assert.Contains(t, out, "What is the weather?")
	assert.Contains(t, out, "search")
	assert.Contains(t, out, "Sunny, around 24 degrees.")
}

func TestTranscriptJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Transcript(&buf, demoTurns(), TranscriptOptions{Format: FormatJSON}))

	var turns []script.Turn
	require.NoError(t, json.Unmarshal(buf.Bytes(), &turns))
	require.Len(t, turns, 4)
	assert.Equal(t, "What is the weather?", turns[0].Content)
	assert.Equal(t, script.KindToolCall, turns[1].NormalizedKind())
	assert.JSONEq(t, `{"q":"weather"}`, string(turns[1].ToolCall.Args))
}

func TestTranscriptYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Transcript(&buf, demoTurns(), TranscriptOptions{Format: FormatYAML}))

	var turns []script.Turn
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &turns))
	require.Len(t, turns, 4)
	assert.Equal(t, 100, turns[1].DurationMs)
	assert.Equal(t, "Sunny, 24 high", turns[2].ToolResult.Summary)
}

func TestTranscriptUnknownFormatFails(t *testing.T) {
	var buf bytes.Buffer
	err := Transcript(&buf, demoTurns(), TranscriptOptions{Format: Format("csv")})
	require.Error(t, err)
}

func TestDetectLinks(t *testing.T) {
	text := "See https://example.com/docs for details, " +
		"the [setup guide](https://example.com/setup), " +
		"and the config at /etc/marionette/config.yaml. " +
		"Not a link: either/or."

	links := DetectLinks(text)
	require.Len(t, links, 3)

	assert.Equal(t, "https://example.com/docs", links[0].URL)
	assert.False(t, links[0].Root)

	assert.Equal(t, "https://example.com/setup", links[1].URL)
	assert.Equal(t, "setup guide", links[1].Label)

	assert.Equal(t, "/etc/marionette/config.yaml", links[2].URL)
	assert.True(t, links[2].Root)
}

func TestDetectLinksDeduplicates(t *testing.T) {
	links := DetectLinks("https://example.com and again https://example.com")
	require.Len(t, links, 1)
}

func TestDetectLinksEmptyText(t *testing.T) {
	assert.Empty(t, DetectLinks(""))
	assert.Empty(t, DetectLinks("no links in here"))
}

func TestHyperlink(t *testing.T) {
	got := Hyperlink("https://example.com", "example")
	assert.Equal(t, "\x1b]8;;https://example.com\x07example\x1b]8;;\x07", got)
}

func TestAnnotateWrapsBareURLs(t *testing.T) {
	out := Annotate("docs at https://example.com/docs today", "")
	assert.Contains(t, out, Hyperlink("https://example.com/docs", "https://example.com/docs"))
	assert.True(t, strings.HasPrefix(out, "docs at "))
	assert.True(t, strings.HasSuffix(out, " today"))
}

func TestAnnotateResolvesRootRelativeAgainstBase(t *testing.T) {
	out := Annotate("see /docs/setup for more", "https://example.com/")
	assert.Contains(t, out, Hyperlink("https://example.com/docs/setup", "/docs/setup"))

	// without a base the path is left alone
	assert.Equal(t, "see /docs/setup for more", Annotate("see /docs/setup for more", ""))
}

func TestAnnotateSkipsNonWebTargets(t *testing.T) {
	in := "run [this](javascript:alert(1)) or open [that](file:///etc/passwd)"
	assert.Equal(t, in, Annotate(in, ""))
}

func TestTranscriptTextAnnotatesLinks(t *testing.T) {
	turns := []script.Turn{
		script.NewTextTurn(script.RoleAssistant, "read https://example.com/guide"),
	}
	var buf bytes.Buffer
	require.NoError(t, Transcript(&buf, turns, TranscriptOptions{Format: FormatText, Links: true}))
	assert.Contains(t, buf.String(), "\x1b]8;;https://example.com/guide\x07")
}
