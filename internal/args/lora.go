package args

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const loraSuffix = ".safetensors"

// Lora references a style adapter: a resolved path or URL plus a strength.
type Lora struct {
	Path  string  `json:"path"`
	Scale float64 `json:"scale"`
}

// ParseLoras normalizes a LoRA spec into references. The spec is either a
// JSON list/object or a comma-separated list of "name[:scale]" /
// "url[:scale]" tokens. Shorthand names (no scheme, no slash) expand to
// baseURL + name + ".safetensors". Order is preserved, empty tokens are
// dropped, and an unparsable scale falls back to 1.0 instead of failing.
func ParseLoras(spec, baseURL string) []Lora {
	trimmed := strings.TrimSpace(spec)
	if trimmed == "" {
		return []Lora{}
	}

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if refs, ok := parseLoraJSON(trimmed, baseURL); ok {
			return refs
		}
		// fall through to comma parsing on malformed JSON
	}

	refs := []Lora{}
	for _, token := range strings.Split(spec, ",") {
		if ref, ok := loraFromToken(token, baseURL); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

func parseLoraJSON(spec, baseURL string) ([]Lora, bool) {
	var items []json.RawMessage
	if strings.HasPrefix(spec, "{") {
		// a single object counts as a one-element list
		items = []json.RawMessage{json.RawMessage(spec)}
	} else if err := json.Unmarshal([]byte(spec), &items); err != nil {
		return nil, false
	}

	refs := make([]Lora, 0, len(items))
	for _, raw := range items {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if ref, ok := loraFromToken(s, baseURL); ok {
				refs = append(refs, ref)
			}
			continue
		}

		var obj struct {
			Path  string   `json:"path"`
			URL   string   `json:"url"`
			Name  string   `json:"name"`
			Scale *float64 `json:"scale"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		path, _ := lo.Coalesce(obj.Path, obj.URL, obj.Name)
		if path == "" {
			continue
		}
		scale := 1.0
		if obj.Scale != nil && !math.IsNaN(*obj.Scale) && !math.IsInf(*obj.Scale, 0) {
			scale = *obj.Scale
		}
		refs = append(refs, Lora{Path: expandLoraName(path, baseURL), Scale: scale})
	}
	return refs, true
}

func loraFromToken(token, baseURL string) (Lora, bool) {
	t := strings.TrimSpace(token)
	if t == "" {
		return Lora{}, false
	}
	path, scale := splitPathScale(t)
	if path == "" {
		return Lora{}, false
	}
	return Lora{Path: expandLoraName(path, baseURL), Scale: scale}, true
}

// splitPathScale separates an optional ":scale" suffix. For URLs only a
// colon after the last slash counts (so scheme and port colons survive);
// otherwise the last colon splits.
func splitPathScale(t string) (string, float64) {
	if strings.Contains(t, "://") {
		slash := strings.LastIndex(t, "/")
		colon := strings.LastIndex(t, ":")
		if colon > slash {
			return t[:colon], parseScale(t[colon+1:])
		}
		return t, 1.0
	}
	if colon := strings.LastIndex(t, ":"); colon >= 0 {
		return strings.TrimSpace(t[:colon]), parseScale(t[colon+1:])
	}
	return t, 1.0
}

func parseScale(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 1.0
	}
	return f
}

// expandLoraName turns a shorthand name into a full URL; anything with a
// scheme or a path separator is left untouched.
func expandLoraName(path, baseURL string) string {
	if strings.Contains(path, "://") || strings.Contains(path, "/") {
		return path
	}
	return baseURL + path + loraSuffix
}
