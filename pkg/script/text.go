package script

import (
	"regexp"
	"strings"
)

var roleLine = regexp.MustCompile(`^(?i)(user|assistant|system):\s*(.*)$`)

// ParseText parses the line-oriented plain text format:
//
//	User: hi
//	Assistant: hello there
//
// A line starting with a known role label opens a new turn. Any other line
// continues the previous turn's content across a line break. A leading
// unlabeled line opens an assistant turn. Trailing blank lines of a turn are
// dropped. The resulting script carries default options.
func ParseText(data []byte) (*Script, error) {
	s := &Script{}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		if m := roleLine.FindStringSubmatch(line); m != nil {
			s.Turns = append(s.Turns, Turn{
				Role:    Role(strings.ToLower(m[1])),
				Content: m[2],
				Kind:    KindMessage,
			})
			continue
		}
		if len(s.Turns) == 0 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			s.Turns = append(s.Turns, Turn{
				Role:    RoleAssistant,
				Content: line,
				Kind:    KindMessage,
			})
			continue
		}
		s.Turns[len(s.Turns)-1].Content += "\n" + line
	}
	for i := range s.Turns {
		s.Turns[i].Content = strings.TrimRight(s.Turns[i].Content, " \t\n")
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
