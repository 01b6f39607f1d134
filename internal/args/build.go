package args

import (
	"math/rand/v2"

	"github.com/isotopp/falimage/internal/registry"
)

// Build merges a model's defaults with user-provided values, keeping only
// arguments the model allows. A seed of zero (or none) is replaced with a
// random value in [1, 2^32-1] so repeated runs differ. The model's default
// map is never mutated.
func Build(model registry.Model, values map[string]any) map[string]any {
	built := make(map[string]any, len(model.Defaults)+len(values))
	for k, v := range model.Defaults {
		built[k] = v
	}
	for k, v := range values {
		if v != nil && model.Allows(k) {
			built[k] = v
		}
	}
	if model.Allows("seed") && seedValue(built["seed"]) == 0 {
		built["seed"] = 1 + rand.Int64N(1<<32-1)
	}
	return built
}

func seedValue(v any) int64 {
	switch s := v.(type) {
	case int:
		return int64(s)
	case int64:
		return s
	case float64:
		return int64(s)
	default:
		return 0
	}
}
