package script

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ParseJSON parses the wire shape
//
//	{title?, options?{typingSpeed?, messageDelayMs?}, messages: [...]}
//
// normalizes it and validates it.
func ParseJSON(data []byte) (*Script, error) {
	s := &Script{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "could not parse script JSON")
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseYAML parses the same document shape as ParseJSON from YAML.
func ParseYAML(data []byte) (*Script, error) {
	s := &Script{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "could not parse script YAML")
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ToJSON renders the script as indented wire JSON.
func ToJSON(s *Script) ([]byte, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal script")
	}
	return append(b, '\n'), nil
}

// ToYAML renders the script as YAML.
func ToYAML(s *Script) ([]byte, error) {
	b, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "could not marshal script")
	}
	return b, nil
}

// UnmarshalYAML accepts arbitrary YAML under args and stores it re-encoded as
// JSON, so tool arguments stay an opaque JSON payload regardless of the
// source format.
func (tc *ToolCall) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name string    `yaml:"name"`
		Args *yaml.Node `yaml:"args"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	tc.Name = raw.Name
	tc.Args = nil
	if raw.Args != nil && !raw.Args.IsZero() {
		var v interface{}
		if err := raw.Args.Decode(&v); err != nil {
			return err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return errors.Wrap(err, "could not encode tool call args")
		}
		tc.Args = b
	}
	return nil
}

// MarshalYAML expands the JSON args back into structured YAML.
func (tc ToolCall) MarshalYAML() (interface{}, error) {
	type wire struct {
		Name string      `yaml:"name"`
		Args interface{} `yaml:"args,omitempty"`
	}
	w := wire{Name: tc.Name}
	if len(tc.Args) > 0 {
		if err := json.Unmarshal(tc.Args, &w.Args); err != nil {
			return nil, errors.Wrap(err, "tool call args are not valid JSON")
		}
	}
	return w, nil
}
