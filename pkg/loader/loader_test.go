package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonScript = `{
  "title": "Demo",
  "options": {"typingSpeed": 2, "messageDelayMs": 0},
  "messages": [
    {"role": "user", "content": "Hi"},
    {"role": "assistant", "content": "Hello there"}
  ]
}`

const yamlScript = `title: Demo
options:
  typingSpeed: 10
messages:
  - role: user
    content: hi
  - toolCall:
      name: search
      args:
        q: weather
    durationMs: 100
`

const textScript = `User: Hi
Assistant: Hello there
and a second line
`

const blockHTML = `<!DOCTYPE html>
<html>
<head><title>Weather chat</title></head>
<body>
  <div data-message-author-role="user">What is the weather?</div>
  <div data-message-author-role="assistant">Sunny, 24 degrees.</div>
  <div data-message-author-role="tool">{"hidden": true}</div>
  <div data-message-author-role="assistant">   </div>
</body>
</html>`

const nextDataHTML = `<html>
<head><title>irrelevant</title></head>
<body>
<script id="__NEXT_DATA__" type="application/json">
{
  "props": {
    "pageProps": {
      "serverResponse": {
        "data": {
          "title": "Trip planning",
          "linear_conversation": [
            {"message": {"author": {"role": "system"}, "content": {"content_type": "text", "parts": []}}},
            {"message": {"author": {"role": "user"}, "content": {"content_type": "text", "parts": ["Where should I go?"]}}},
            {"message": {"author": {"role": "assistant"}, "content": {"content_type": "text", "parts": ["Lisbon", "in spring."]}}}
          ]
        }
      }
    }
  }
}
</script>
</body>
</html>`

func TestParseByExtension(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		hint  string
		turns int
	}{
		{"json", jsonScript, "demo.json", 2},
		{"yaml", yamlScript, "demo.yaml", 2},
		{"yml", yamlScript, "demo.yml", 2},
		{"txt", textScript, "demo.txt", 2},
		{"html", blockHTML, "share.html", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Parse([]byte(tc.data), tc.hint)
			require.NoError(t, err)
			assert.Equal(t, tc.turns, s.Len())
		})
	}
}

func TestParseSniffsContentWithoutExtension(t *testing.T) {
	s, err := Parse([]byte(jsonScript), "demo")
	require.NoError(t, err)
	assert.Equal(t, "Demo", s.Title)
	assert.Equal(t, 2, s.Options.Rate())

	s, err = Parse([]byte(blockHTML), "share")
	require.NoError(t, err)
	assert.Equal(t, "Weather chat", s.Title)

	s, err = Parse([]byte(textScript), "demo")
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "Hello there\nand a second line", s.Turns[1].Content)
}

func TestParseYAMLToolCall(t *testing.T) {
	s, err := Parse([]byte(yamlScript), "demo.yaml")
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, script.KindToolCall, s.Turns[1].NormalizedKind())
	assert.Equal(t, "search", s.Turns[1].ToolCall.Name)
	assert.JSONEq(t, `{"q":"weather"}`, string(s.Turns[1].ToolCall.Args))
}

func TestImportHTMLMessageBlocks(t *testing.T) {
	s, err := ImportHTML(strings.NewReader(blockHTML))
	require.NoError(t, err)
	assert.Equal(t, "Weather chat", s.Title)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, script.RoleUser, s.Turns[0].Role)
	assert.Equal(t, "What is the weather?", s.Turns[0].Content)
	assert.Equal(t, script.RoleAssistant, s.Turns[1].Role)
}

func TestImportHTMLNextData(t *testing.T) {
	s, err := ImportHTML(strings.NewReader(nextDataHTML))
	require.NoError(t, err)
	assert.Equal(t, "Trip planning", s.Title)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, "Where should I go?", s.Turns[0].Content)
	assert.Equal(t, "Lisbon\nin spring.", s.Turns[1].Content)
}

func TestImportHTMLWithoutConversationFails(t *testing.T) {
	_, err := ImportHTML(strings.NewReader("<html><body><p>nothing here</p></body></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conversation")
}

func TestLoadLocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlScript), 0o644))

	s, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Demo", s.Title)
	assert.Equal(t, 2, s.Len())
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "gone.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read script file")
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(jsonScript))
	}))
	defer srv.Close()

	s, err := Load(context.Background(), srv.URL+"/scripts/demo.json")
	require.NoError(t, err)
	assert.Equal(t, "Demo", s.Title)
	assert.Equal(t, 2, s.Len())
}

func TestLoadURLNon200Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), srv.URL+"/scripts/demo.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
