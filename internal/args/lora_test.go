package args

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loraBase = "https://host.example/loras/"

func TestParseLorasEmpty(t *testing.T) {
	assert.Empty(t, ParseLoras("", loraBase))
	assert.Empty(t, ParseLoras("  ", loraBase))
	assert.Empty(t, ParseLoras(",,", loraBase))
}

func TestParseLorasShorthand(t *testing.T) {
	refs := ParseLoras("foo", loraBase)
	require.Len(t, refs, 1)
	assert.Equal(t, Lora{Path: loraBase + "foo.safetensors", Scale: 1.0}, refs[0])
}

func TestParseLorasCommaList(t *testing.T) {
	refs := ParseLoras("foo:0.8,bar:1.2,https://x/y.safetensors:0.5", loraBase)
	require.Len(t, refs, 3)
	assert.Equal(t, Lora{Path: loraBase + "foo.safetensors", Scale: 0.8}, refs[0])
	assert.Equal(t, Lora{Path: loraBase + "bar.safetensors", Scale: 1.2}, refs[1])
	assert.Equal(t, Lora{Path: "https://x/y.safetensors", Scale: 0.5}, refs[2])
}

func TestParseLorasUnparsableScale(t *testing.T) {
	refs := ParseLoras("bad:xx", loraBase)
	require.Len(t, refs, 1)
	assert.Equal(t, Lora{Path: loraBase + "bad.safetensors", Scale: 1.0}, refs[0])
}

func TestParseLorasURLWithPort(t *testing.T) {
	// the port colon sits before the last slash and must not become a scale
	refs := ParseLoras("https://host:8443/x.safetensors", loraBase)
	require.Len(t, refs, 1)
	assert.Equal(t, Lora{Path: "https://host:8443/x.safetensors", Scale: 1.0}, refs[0])
}

func TestParseLorasJSONList(t *testing.T) {
	refs := ParseLoras(`[{"path": "https://ex/x.safetensors", "scale": 2}]`, loraBase)
	require.Len(t, refs, 1)
	assert.Equal(t, Lora{Path: "https://ex/x.safetensors", Scale: 2.0}, refs[0])
}

func TestParseLorasJSONSingleObject(t *testing.T) {
	refs := ParseLoras(`{"name": "foo", "scale": 0.7}`, loraBase)
	require.Len(t, refs, 1)
	assert.Equal(t, Lora{Path: loraBase + "foo.safetensors", Scale: 0.7}, refs[0])
}

func TestParseLorasJSONMixed(t *testing.T) {
	refs := ParseLoras(`["foo:0.8", {"url": "https://ex/y.safetensors"}]`, loraBase)
	require.Len(t, refs, 2)
	assert.Equal(t, Lora{Path: loraBase + "foo.safetensors", Scale: 0.8}, refs[0])
	assert.Equal(t, Lora{Path: "https://ex/y.safetensors", Scale: 1.0}, refs[1])
}

func TestParseLorasJSONDefaultScale(t *testing.T) {
	refs := ParseLoras(`[{"path": "https://ex/x.safetensors"}]`, loraBase)
	require.Len(t, refs, 1)
	assert.Equal(t, 1.0, refs[0].Scale)
}

func TestParseLorasMalformedJSONFallsBack(t *testing.T) {
	// looks structured but isn't; comma parsing takes over
	refs := ParseLoras(`[foo:0.5`, loraBase)
	require.Len(t, refs, 1)
	assert.Equal(t, Lora{Path: loraBase + "[foo.safetensors", Scale: 0.5}, refs[0])
}

func TestParseLorasPathWithSlashUntouched(t *testing.T) {
	refs := ParseLoras("dir/foo:0.9", loraBase)
	require.Len(t, refs, 1)
	assert.Equal(t, Lora{Path: "dir/foo", Scale: 0.9}, refs[0])
}

func TestParseLorasOrderAndDuplicates(t *testing.T) {
	refs := ParseLoras("foo,foo:2", loraBase)
	require.Len(t, refs, 2)
	assert.Equal(t, 1.0, refs[0].Scale)
	assert.Equal(t, 2.0, refs[1].Scale)
	assert.Equal(t, refs[0].Path, refs[1].Path)
}
