package registry

import (
	"sort"

	"github.com/iancoleman/strcase"

	"github.com/goliatone/go-formmodal/pkg/model"
)

// ExportCandidates lists the export names tried for a modal, in order:
// default, <name>ModalConfig, <camel>ModalConfig, <Pascal>ModalConfig,
// <camel>, <Pascal>, modalConfig, ModalConfig, config. Duplicates are
// removed.
func ExportCandidates(name string) []string {
	camel := strcase.ToLowerCamel(name)
	pascal := strcase.ToCamel(name)
	raw := []string{
		"default",
		name + "ModalConfig",
		camel + "ModalConfig",
		pascal + "ModalConfig",
		camel,
		pascal,
		"modalConfig",
		"ModalConfig",
		"config",
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, candidate := range raw {
		if candidate == "" {
			continue
		}
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// Extract picks the configuration export out of a module. Named candidates
// are tried first, then exports are scanned in key order for the first value
// shaped like a configuration.
func Extract(module Module, name string) (*model.ModalConfig, string, bool) {
	for _, candidate := range ExportCandidates(name) {
		value, ok := module[candidate]
		if !ok || !isConfigValue(value) {
			continue
		}
		cfg, err := model.DecodeConfig(value)
		if err != nil {
			continue
		}
		return cfg, candidate, true
	}

	keys := make([]string, 0, len(module))
	for key := range module {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := module[key]
		if !isConfigValue(value) {
			continue
		}
		cfg, err := model.DecodeConfig(value)
		if err != nil {
			continue
		}
		return cfg, key, true
	}
	return nil, "", false
}

func isConfigValue(value any) bool {
	switch v := value.(type) {
	case *model.ModalConfig:
		return v != nil
	case model.ModalConfig:
		return true
	case map[string]any:
		return looksLikeConfig(v)
	}
	return false
}

// looksLikeConfig is the structural test: an object carrying a title, a
// field list or a submit handler.
func looksLikeConfig(doc map[string]any) bool {
	for _, key := range []string{"title", "config", "onSubmit"} {
		if _, ok := doc[key]; ok {
			return true
		}
	}
	return false
}
