package model

import (
	"bytes"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
)

// UnmarshalJSON accepts a bare scalar ("red", 3) or an object with value and
// label keys.
func (o *Option) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var scalar any
		if err := json.Unmarshal(trimmed, &scalar); err != nil {
			return fmt.Errorf("model: decode option: %w", err)
		}
		o.Value = Stringify(scalar)
		o.Label = o.Value
		return nil
	}
	var raw struct {
		Value any    `json:"value"`
		Label string `json:"label"`
		Text  string `json:"text"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("model: decode option: %w", err)
	}
	o.Value = Stringify(raw.Value)
	o.Label = raw.Label
	if o.Label == "" {
		o.Label = raw.Text
	}
	return nil
}

// UnmarshalJSON accepts a pattern string or an object with pattern/hook keys.
func (v *Verify) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var pattern string
		if err := json.Unmarshal(trimmed, &pattern); err != nil {
			return fmt.Errorf("model: decode verify: %w", err)
		}
		v.Pattern = pattern
		return nil
	}
	type plain Verify
	var raw plain
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return fmt.Errorf("model: decode verify: %w", err)
	}
	*v = Verify(raw)
	return nil
}

// MarshalJSON collapses pattern-only rules back to a string.
func (v Verify) MarshalJSON() ([]byte, error) {
	if v.Hook == "" {
		if v.Pattern == "" {
			return []byte("null"), nil
		}
		return json.Marshal(v.Pattern)
	}
	type plain Verify
	return json.Marshal(plain(v))
}

// UnmarshalJSON accepts a registry name or an inline configuration object.
func (c *ChildRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*c = ChildRef{}
		return nil
	case trimmed[0] == '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return fmt.Errorf("model: decode child modal: %w", err)
		}
		*c = ChildRef{Name: name}
		return nil
	}
	cfg := &ModalConfig{}
	if err := json.Unmarshal(trimmed, cfg); err != nil {
		return fmt.Errorf("model: decode child modal: %w", err)
	}
	*c = ChildRef{Config: cfg}
	return nil
}

// MarshalJSON emits the name or the inline configuration.
func (c ChildRef) MarshalJSON() ([]byte, error) {
	switch {
	case c.Config != nil:
		return json.Marshal(c.Config)
	case c.Name != "":
		return json.Marshal(c.Name)
	}
	return []byte("null"), nil
}

// DecodeConfig converts a loosely typed value (a decoded JSON/YAML document,
// a ModalConfig or a pointer to one) into a configuration.
func DecodeConfig(value any) (*ModalConfig, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("model: decode config: nil value")
	case *ModalConfig:
		return v, nil
	case ModalConfig:
		return &v, nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("model: encode config: %w", err)
	}
	cfg := &ModalConfig{}
	if err := json.Unmarshal(payload, cfg); err != nil {
		return nil, fmt.Errorf("model: decode config: %w", err)
	}
	return cfg, nil
}

// Stringify renders scalar values the way a form control would display them.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
