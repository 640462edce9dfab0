// Package loader resolves script sources: local files, http(s) URLs, and
// shared-conversation HTML pages. Format detection keys off the source
// extension first and the content shape second, so `marionette play demo`
// works whether demo is JSON, YAML or the plain text line format.
package loader

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/go-go-golems/marionette/pkg/security"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Load resolves source to script bytes and parses them. Sources starting with
// http:// or https:// are fetched, everything else is read as a local file.
// Errors are returned to the caller, a failed load never reaches a player.
func Load(ctx context.Context, source string) (*script.Script, error) {
	var data []byte
	hint := source

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		u, err := url.Parse(source)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid script URL %s", source)
		}
		hint = u.Path

		data, err = fetch(ctx, source)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read script file %s", source)
		}
	}

	log.Debug().Str("source", source).Int("bytes", len(data)).Msg("script source loaded")

	s, err := Parse(data, hint)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse script from %s", source)
	}
	return s, nil
}

// Parse decodes script bytes, choosing the format from the hint's extension
// when it has one and from the content shape otherwise: a document starting
// with { is JSON, an HTML document goes through the share-page importer, and
// anything else is the plain text line format.
func Parse(data []byte, hint string) (*script.Script, error) {
	switch strings.ToLower(filepath.Ext(hint)) {
	case ".json":
		return script.ParseJSON(data)
	case ".yaml", ".yml":
		return script.ParseYAML(data)
	case ".html", ".htm":
		return ImportHTML(bytes.NewReader(data))
	case ".txt":
		return script.ParseText(data)
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) > 0 && trimmed[0] == '{':
		return script.ParseJSON(data)
	case looksLikeHTML(trimmed):
		return ImportHTML(bytes.NewReader(data))
	default:
		return script.ParseText(data)
	}
}

func looksLikeHTML(trimmed []byte) bool {
	n := len(trimmed)
	if n > 64 {
		n = 64
	}
	lower := strings.ToLower(string(trimmed[:n]))
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

// fetchPolicy keeps scheme and host sanity checks on source URLs. Local
// targets stay allowed, scripts are often served from a dev machine.
var fetchPolicy = security.OutboundURLOptions{
	AllowHTTP:          true,
	AllowLocalNetworks: true,
}

func fetch(ctx context.Context, source string) ([]byte, error) {
	if err := security.ValidateOutboundURL(source, fetchPolicy); err != nil {
		return nil, errors.Wrapf(err, "refusing to fetch %s", source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not build request for %s", source)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "could not fetch %s", source)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("could not fetch %s: %s", source, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read response from %s", source)
	}
	return data, nil
}
