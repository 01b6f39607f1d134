package args

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Named sizes shared across models.
var namedSizes = map[string]struct{}{
	"square_hd":      {},
	"square":         {},
	"portrait_4_3":   {},
	"portrait_16_9":  {},
	"landscape_4_3":  {},
	"landscape_16_9": {},
}

// Size is an explicit pixel size, used instead of a named size.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CoerceSize validates size inputs and returns the payload value: a
// named-size string, a Size, or nil when nothing was given. A named size
// cannot be combined with explicit dimensions, and width/height only come as
// a pair.
func CoerceSize(named string, width, height int) (any, error) {
	if named != "" && (width != 0 || height != 0) {
		return nil, errors.New("--image-size cannot be combined with --width/--height")
	}

	if width != 0 || height != 0 {
		if width == 0 || height == 0 {
			return nil, errors.New("--width and --height must be provided together")
		}
		return Size{Width: width, Height: height}, nil
	}

	if named == "" {
		return nil, nil
	}
	if _, ok := namedSizes[named]; !ok {
		return nil, fmt.Errorf("invalid --image-size %q; allowed: %s", named, strings.Join(SizeNames(), ", "))
	}
	return named, nil
}

// SizeNames returns the valid named sizes, sorted.
func SizeNames() []string {
	names := lo.Keys(namedSizes)
	sort.Strings(names)
	return names
}
