package model

import (
	"strconv"
	"strings"
)

// ApplyOverride merges an override object onto a copy of the descriptor: each
// key replaces the attribute of the same name. Keys that do not map to a known
// attribute are kept in Attrs so hosts can still read them.
func ApplyOverride(field FieldDescriptor, patch map[string]any) FieldDescriptor {
	out := field.Clone()
	for key, value := range patch {
		switch key {
		case "field":
			out.Field = Stringify(value)
		case "title":
			out.Title = Stringify(value)
		case "type":
			out.Type = FieldType(Stringify(value))
		case "value":
			out.Value = value
		case "required":
			out.Required = ToBool(value)
		case "readonly":
			out.Readonly = ToBool(value)
		case "placeholder":
			out.Placeholder = Stringify(value)
		case "label":
			out.Label = Stringify(value)
		case "description":
			out.Description = Stringify(value)
		case "math":
			out.Math = ToBool(value)
		case "rows":
			out.Rows = int(ToFloat(value))
		case "min":
			out.Min = floatPtr(value)
		case "max":
			out.Max = floatPtr(value)
		case "step":
			out.Step = floatPtr(value)
		case "options":
			out.Options = ToOptions(value)
		case "verify":
			out.Verify = toVerify(value)
		case "onChange":
			switch fn := value.(type) {
			case ChangeFunc:
				out.OnChange = fn
			case func(any, string, map[string]any):
				out.OnChange = fn
			case string:
				out.ChangeHook = fn
			}
		case "button":
			switch b := value.(type) {
			case *ButtonDescriptor:
				out.Button = b
			case ButtonDescriptor:
				out.Button = &b
			case nil:
				out.Button = nil
			}
		default:
			if out.Attrs == nil {
				out.Attrs = make(map[string]any)
			}
			out.Attrs[key] = value
		}
	}
	return out
}

func toVerify(value any) Verify {
	switch v := value.(type) {
	case Verify:
		return v
	case VerifyFunc:
		return Verify{Func: v}
	case func(any) error:
		return Verify{Func: v}
	case string:
		return Verify{Pattern: v}
	case map[string]any:
		return Verify{Pattern: Stringify(v["pattern"]), Hook: Stringify(v["hook"])}
	}
	return Verify{}
}

// ToOptions converts loosely typed option lists.
func ToOptions(value any) []Option {
	switch v := value.(type) {
	case []Option:
		return append([]Option(nil), v...)
	case []string:
		out := make([]Option, 0, len(v))
		for _, item := range v {
			out = append(out, Option{Value: item, Label: item})
		}
		return out
	case []any:
		out := make([]Option, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				opt := Option{Value: Stringify(m["value"]), Label: Stringify(m["label"])}
				if opt.Label == "" {
					opt.Label = Stringify(m["text"])
				}
				out = append(out, opt)
				continue
			}
			text := Stringify(item)
			out = append(out, Option{Value: text, Label: text})
		}
		return out
	}
	return nil
}

// ToBool interprets booleans, "true"/"1" strings and non-zero numbers.
func ToBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	case nil:
		return false
	default:
		return ToFloat(v) != 0
	}
}

// ToFloat converts numeric values and numeric strings; anything else is 0.
func ToFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}

// ToStrings converts slice-like values into a string slice.
func ToStrings(value any) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []string:
		return append([]string{}, v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, Stringify(item))
		}
		return out
	case string:
		if v == "" {
			return []string{}
		}
		return []string{v}
	}
	return []string{Stringify(value)}
}

func floatPtr(value any) *float64 {
	if value == nil {
		return nil
	}
	f := ToFloat(value)
	return &f
}
