package args

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceSizeNamed(t *testing.T) {
	for _, name := range SizeNames() {
		got, err := CoerceSize(name, 0, 0)
		require.NoError(t, err, "CoerceSize(%q)", name)
		assert.Equal(t, name, got)
	}
}

func TestCoerceSizeExplicit(t *testing.T) {
	got, err := CoerceSize("", 1024, 768)
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 1024, Height: 768}, got)
}

func TestCoerceSizeNothing(t *testing.T) {
	got, err := CoerceSize("", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCoerceSizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		named  string
		width  int
		height int
	}{
		{"named plus width", "square", 100, 0},
		{"named plus height", "square", 0, 100},
		{"named plus both", "portrait_4_3", 100, 100},
		{"width only", "", 100, 0},
		{"height only", "", 0, 100},
		{"unknown named size", "hexagon", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CoerceSize(tt.named, tt.width, tt.height)
			assert.Error(t, err)
		})
	}
}
