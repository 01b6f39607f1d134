package args

import (
	"testing"

	"github.com/isotopp/falimage/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func model(t *testing.T, key string) registry.Model {
	t.Helper()
	m, ok := registry.Lookup(key)
	require.True(t, ok, "model %q must exist", key)
	return m
}

func TestBuildAppliesDefaults(t *testing.T) {
	built := Build(model(t, "schnell"), map[string]any{"prompt": "a cat"})
	assert.Equal(t, "a cat", built["prompt"])
	assert.Equal(t, 4, built["num_inference_steps"])
	assert.Equal(t, false, built["enable_safety_checker"])
}

func TestBuildOverridesDefaults(t *testing.T) {
	built := Build(model(t, "dev"), map[string]any{
		"prompt":              "a cat",
		"num_inference_steps": 50,
	})
	assert.Equal(t, 50, built["num_inference_steps"])
	assert.Equal(t, 3.5, built["guidance_scale"])
}

func TestBuildDropsDisallowedAndNil(t *testing.T) {
	built := Build(model(t, "schnell"), map[string]any{
		"prompt":         "a cat",
		"guidance_scale": 7.0, // not allowed for schnell
		"image_size":     nil, // absent
	})
	assert.NotContains(t, built, "guidance_scale")
	assert.NotContains(t, built, "image_size")
}

func TestBuildRandomizesZeroSeed(t *testing.T) {
	for _, values := range []map[string]any{
		{"prompt": "a cat", "seed": 0},
		{"prompt": "a cat", "seed": int64(0)},
		{"prompt": "a cat"},
	} {
		built := Build(model(t, "schnell"), values)
		seed, ok := built["seed"].(int64)
		require.True(t, ok, "seed must be an int64, got %T", built["seed"])
		assert.GreaterOrEqual(t, seed, int64(1))
		assert.LessOrEqual(t, seed, int64(1)<<32-1)
	}
}

func TestBuildPassesNonzeroSeed(t *testing.T) {
	built := Build(model(t, "schnell"), map[string]any{"prompt": "a cat", "seed": int64(42)})
	assert.Equal(t, int64(42), built["seed"])
}

func TestBuildDoesNotMutateDefaults(t *testing.T) {
	m := model(t, "realism")
	built := Build(m, map[string]any{"prompt": "a cat", "output_format": "png"})
	built["strength"] = 99

	again, _ := registry.Lookup("realism")
	assert.Equal(t, "jpeg", again.Defaults["output_format"])
	assert.Equal(t, 1, again.Defaults["strength"])
}
