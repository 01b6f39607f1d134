package exif

import (
	"bytes"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	path   string
	fields map[string]any
	err    error
	calls  int
}

func (f *fakeWriter) Write(path string, fields map[string]any) error {
	f.calls++
	f.path = path
	f.fields = fields
	return f.err
}

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "img.jpg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0o600))
	return path
}

func TestTagFixedFields(t *testing.T) {
	path := tempImage(t)
	w := &fakeWriter{}
	ts := time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC)
	tagger := &Tagger{Writer: w, Time: &ts, Quiet: true}

	require.True(t, tagger.Tag(path))
	require.Equal(t, 1, w.calls)
	assert.Equal(t, path, w.path)

	assert.Equal(t, "Apple", w.fields["Make"])
	assert.Equal(t, "iPhone 16 pro", w.fields["Model"])
	assert.Equal(t, "John Doe", w.fields["Artist"])
	assert.Equal(t, "falimage", w.fields["Software"])
	assert.Equal(t, "(C) 2024 John Doe", w.fields["Copyright"])
	assert.Equal(t, "Horizontal (normal)", w.fields["Orientation"])
	assert.Equal(t, "2024:06:01 12:30:45", w.fields["DateTimeOriginal"])
	assert.Equal(t, "2024:06:01 12:30:45", w.fields["CreateDate"])
	assert.Equal(t, "Aperture-priority AE", w.fields["ExposureProgram"])
	assert.Equal(t, "Off, Did not fire", w.fields["Flash"])
}

func TestTagCameraSettingsFromCatalogs(t *testing.T) {
	path := tempImage(t)
	w := &fakeWriter{}
	tagger := &Tagger{Writer: w, Rand: rand.New(rand.NewPCG(1, 2)), Quiet: true}

	require.True(t, tagger.Tag(path))

	assert.Contains(t, exposureTimes, w.fields["ExposureTime"])
	assert.Contains(t, isoValues, w.fields["ISO"])
	assert.Contains(t, apertureValues, w.fields["FNumber"])
	assert.Regexp(t, `^(35|50|85|100|135) mm$`, w.fields["FocalLength"])
}

func TestTagUsesMtimeWithoutFixedTime(t *testing.T) {
	path := tempImage(t)
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	w := &fakeWriter{}
	tagger := &Tagger{Writer: w, Quiet: true}
	require.True(t, tagger.Tag(path))

	assert.Equal(t, "(C) 2021 John Doe", w.fields["Copyright"])
	assert.Equal(t, mtime.Local().Format("2006:01:02 15:04:05"), w.fields["DateTimeOriginal"])
}

func TestTagMissingFile(t *testing.T) {
	w := &fakeWriter{}
	var out bytes.Buffer
	tagger := &Tagger{Writer: w, Out: &out}

	assert.False(t, tagger.Tag(filepath.Join(t.TempDir(), "nope.jpg")))
	assert.Zero(t, w.calls)
	assert.Contains(t, out.String(), "File not found")
}

func TestTagWriterFailure(t *testing.T) {
	path := tempImage(t)
	w := &fakeWriter{err: errors.New("boom")}
	var out bytes.Buffer
	tagger := &Tagger{Writer: w, Out: &out}

	assert.False(t, tagger.Tag(path))
	assert.Contains(t, out.String(), "Error updating EXIF data")
	assert.Contains(t, out.String(), "boom")
}

func TestTagQuiet(t *testing.T) {
	path := tempImage(t)
	var out bytes.Buffer
	tagger := &Tagger{Writer: &fakeWriter{}, Quiet: true, Out: &out}

	assert.True(t, tagger.Tag(path))
	assert.Empty(t, out.String())
}

func TestTagVariesButStaysStructural(t *testing.T) {
	path := tempImage(t)
	w := &fakeWriter{}
	tagger := &Tagger{Writer: w, Quiet: true}

	require.True(t, tagger.Tag(path))
	first := w.fields
	require.True(t, tagger.Tag(path))
	second := w.fields

	// same tag set every run, values may differ
	assert.ElementsMatch(t, keys(first), keys(second))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
