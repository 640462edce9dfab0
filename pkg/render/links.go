package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-go-golems/marionette/pkg/security"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Link is a clickable target found in conversation text.
type Link struct {
	// URL is the link destination. Root-relative targets keep their leading
	// slash and are resolved against a base by Annotate.
	URL string
	// Label is the visible text, the URL itself for bare links.
	Label string
	// Root marks a root-relative target like /docs/setup.
	Root bool
}

var linkParser = goldmark.New(goldmark.WithExtensions(extension.Linkify))

// rootRelative matches absolute paths mentioned in prose, like /docs/setup.
var rootRelative = regexp.MustCompile(`(?m)(^|[\s(])(/[A-Za-z0-9_~.-]+(?:/[A-Za-z0-9_~.-]+)+/?)`)

// DetectLinks finds explicit markdown links, bare URLs and root-relative
// paths in text. Results are deduplicated by URL, in order of appearance.
func DetectLinks(s string) []Link {
	source := []byte(s)
	document := linkParser.Parser().Parse(text.NewReader(source))

	var links []Link
	seen := map[string]bool{}
	add := func(l Link) {
		if l.URL == "" || seen[l.URL] {
			return
		}
		seen[l.URL] = true
		links = append(links, l)
	}

	_ = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Link:
			add(Link{
				URL:   string(v.Destination),
				Label: string(v.Text(source)),
			})
		case *ast.AutoLink:
			url := string(v.URL(source))
			add(Link{URL: url, Label: url})
		}
		return ast.WalkContinue, nil
	})

	for _, m := range rootRelative.FindAllStringSubmatch(s, -1) {
		// a sentence period is not part of the path
		path := strings.TrimRight(m[2], ".")
		add(Link{URL: path, Label: path, Root: true})
	}
	return links
}

// Hyperlink wraps label in an OSC 8 terminal anchor pointing at url.
func Hyperlink(url string, label string) string {
	return fmt.Sprintf("\x1b]8;;%s\x07%s\x1b]8;;\x07", url, label)
}

// anchorPolicy gates what script content may turn into a clickable anchor.
// Local targets are fine in a transcript, non-web schemes are not.
var anchorPolicy = security.OutboundURLOptions{
	AllowHTTP:          true,
	AllowLocalNetworks: true,
}

// Annotate rewrites every detected link occurrence in s as an OSC 8 anchor.
// Root-relative targets are resolved against base, or left untouched when no
// base is given. Targets that fail validation stay plain text.
func Annotate(s string, base string) string {
	links := DetectLinks(s)
	if len(links) == 0 {
		return s
	}

	var pairs []string
	for _, l := range links {
		if l.Label == "" {
			continue
		}
		target := l.URL
		if l.Root {
			if base == "" {
				continue
			}
			target = strings.TrimRight(base, "/") + l.URL
		}
		if err := security.ValidateOutboundURL(target, anchorPolicy); err != nil {
			continue
		}
		pairs = append(pairs, l.Label, Hyperlink(target, l.Label))
	}
	if len(pairs) == 0 {
		return s
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
