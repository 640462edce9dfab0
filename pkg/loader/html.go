package loader

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-go-golems/marionette/pkg/script"
	"github.com/pkg/errors"
)

// nextData is the slice of a shared conversation page's __NEXT_DATA__ blob we
// care about: the title and the linearized message list.
type nextData struct {
	Props struct {
		PageProps struct {
			ServerResponse struct {
				Data struct {
					Title              string `json:"title"`
					LinearConversation []struct {
						Message struct {
							Author struct {
								Role string `json:"role"`
							} `json:"author"`
							Content struct {
								ContentType string   `json:"content_type"`
								Parts       []string `json:"parts"`
							} `json:"content"`
						} `json:"message"`
					} `json:"linear_conversation"`
				} `json:"data"`
			} `json:"serverResponse"`
		} `json:"pageProps"`
	} `json:"props"`
}

// ImportHTML converts a shared conversation page into a script. Two page
// shapes are understood: the __NEXT_DATA__ JSON blob older share pages embed,
// and the [data-message-author-role] message blocks of current ones.
func ImportHTML(r io.Reader) (*script.Script, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse HTML document")
	}

	s, err := importNextData(doc)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = importMessageBlocks(doc)
	}
	if s == nil || s.Len() == 0 {
		return nil, errors.New("no conversation found in document")
	}

	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, errors.Wrap(err, "imported conversation is not a valid script")
	}
	return s, nil
}

func importNextData(doc *goquery.Document) (*script.Script, error) {
	raw := doc.Find("#__NEXT_DATA__").Text()
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, errors.Wrap(err, "could not decode __NEXT_DATA__ blob")
	}

	serverData := data.Props.PageProps.ServerResponse.Data
	s := &script.Script{Title: serverData.Title}
	for _, entry := range serverData.LinearConversation {
		msg := entry.Message
		role, ok := importRole(msg.Author.Role)
		if !ok {
			continue
		}
		content := strings.TrimSpace(strings.Join(msg.Content.Parts, "\n"))
		if content == "" {
			continue
		}
		s.Turns = append(s.Turns, script.NewTextTurn(role, content))
	}
	return s, nil
}

func importMessageBlocks(doc *goquery.Document) *script.Script {
	s := &script.Script{Title: strings.TrimSpace(doc.Find("title").First().Text())}
	doc.Find("[data-message-author-role]").Each(func(_ int, sel *goquery.Selection) {
		role, ok := importRole(sel.AttrOr("data-message-author-role", ""))
		if !ok {
			return
		}
		content := strings.TrimSpace(sel.Text())
		if content == "" {
			return
		}
		s.Turns = append(s.Turns, script.NewTextTurn(role, content))
	})
	return s
}

// importRole maps share-page author roles onto script roles. Tool and system
// bookkeeping messages that carry no dialogue are dropped.
func importRole(raw string) (script.Role, bool) {
	switch script.Role(strings.ToLower(strings.TrimSpace(raw))) {
	case script.RoleUser:
		return script.RoleUser, true
	case script.RoleAssistant:
		return script.RoleAssistant, true
	case script.RoleSystem:
		return script.RoleSystem, true
	default:
		return "", false
	}
}
