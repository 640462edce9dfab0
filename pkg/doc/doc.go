// Package doc ships the embedded documentation pages surfaced by the docs
// command.
package doc

import (
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

//go:embed topics/*.md
var docFS embed.FS

// Topic is one embedded documentation page.
type Topic struct {
	// Slug addresses the topic on the command line, the file name without
	// its extension.
	Slug string
	// Title is the first heading in the document.
	Title string
	// Content is the raw markdown.
	Content string
}

// Topics returns every embedded topic sorted by slug.
func Topics() ([]Topic, error) {
	entries, err := fs.ReadDir(docFS, "topics")
	if err != nil {
		return nil, err
	}

	var topics []Topic
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		data, err := docFS.ReadFile("topics/" + entry.Name())
		if err != nil {
			return nil, err
		}
		content := string(data)
		topics = append(topics, Topic{
			Slug:    strings.TrimSuffix(entry.Name(), ".md"),
			Title:   firstHeading(content),
			Content: content,
		})
	}

	sort.Slice(topics, func(i, j int) bool {
		return topics[i].Slug < topics[j].Slug
	})
	return topics, nil
}

// Lookup returns the topic with the given slug.
func Lookup(slug string) (Topic, error) {
	topics, err := Topics()
	if err != nil {
		return Topic{}, err
	}
	for _, t := range topics {
		if t.Slug == slug {
			return t, nil
		}
	}
	return Topic{}, errors.Errorf("unknown topic %q", slug)
}

func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
