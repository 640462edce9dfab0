package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicsLoadWithTitles(t *testing.T) {
	topics, err := Topics()
	require.NoError(t, err)
	require.NotEmpty(t, topics)

	for _, topic := range topics {
		assert.NotEmpty(t, topic.Slug)
		assert.NotEmpty(t, topic.Title, "topic %s has no heading", topic.Slug)
		assert.NotEmpty(t, topic.Content)
	}
}

func TestLookupFindsScriptFormat(t *testing.T) {
	topic, err := Lookup("script-format")
	require.NoError(t, err)
	assert.Equal(t, "Script format", topic.Title)
}

func TestLookupUnknownSlugFails(t *testing.T) {
	_, err := Lookup("no-such-topic")
	assert.Error(t, err)
}
