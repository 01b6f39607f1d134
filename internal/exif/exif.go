package exif

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"
)

// Fixed identity stamped into every image.
const (
	cameraMake      = "Apple"
	cameraModel     = "iPhone 16 pro"
	author          = "John Doe"
	software        = "falimage"
	orientation     = "Horizontal (normal)"
	exposureProgram = "Aperture-priority AE"
	flashMode       = "Off, Did not fire"
)

// Catalogs of plausible camera settings; one entry of each is picked per
// file so images don't share identical parameters.
var (
	exposureTimes  = []string{"1/80", "1/60", "1/125", "1/250", "1/500"}
	isoValues      = []int64{100, 125, 200, 400, 800}
	apertureValues = []float64{1.8, 2.0, 2.8, 4.0, 5.6}
	focalLengths   = []int64{35, 50, 85, 100, 135}
)

// Writer is the slice of the metadata backend the tagger needs, split out so
// tests run without the exiftool binary.
type Writer interface {
	Write(path string, fields map[string]any) error
}

// Tagger writes synthetic camera metadata into saved images. The zero value
// is not usable; Writer must be set.
type Tagger struct {
	Writer Writer
	Rand   *rand.Rand // optional, for deterministic settings in tests
	Time   *time.Time // optional fixed timestamp; default is the file mtime
	Quiet  bool
	Out    io.Writer // diagnostics, default stdout
}

// Tag replaces the metadata block of the image at path. It never fails the
// caller: any problem is reported on Out (unless Quiet) and yields false.
func (t *Tagger) Tag(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		t.report("File not found: %s", path)
		return false
	}

	ts := info.ModTime()
	if t.Time != nil {
		ts = *t.Time
	}

	if err := t.Writer.Write(path, t.fields(ts)); err != nil {
		t.report("Error updating EXIF data for %s: %v", path, err)
		return false
	}
	t.report("Updated EXIF data for %s", path)
	return true
}

func (t *Tagger) fields(ts time.Time) map[string]any {
	formatted := ts.Format("2006:01:02 15:04:05")
	return map[string]any{
		"Make":             cameraMake,
		"Model":            cameraModel,
		"Artist":           author,
		"Software":         software,
		"Copyright":        fmt.Sprintf("(C) %d %s", ts.Year(), author),
		"Orientation":      orientation,
		"DateTimeOriginal": formatted,
		"CreateDate":       formatted,
		"ExposureTime":     exposureTimes[t.intn(len(exposureTimes))],
		"ISO":              isoValues[t.intn(len(isoValues))],
		"FNumber":          apertureValues[t.intn(len(apertureValues))],
		"FocalLength":      fmt.Sprintf("%d mm", focalLengths[t.intn(len(focalLengths))]),
		"ExposureProgram":  exposureProgram,
		"Flash":            flashMode,
	}
}

func (t *Tagger) intn(n int) int {
	if t.Rand != nil {
		return t.Rand.IntN(n)
	}
	return rand.IntN(n)
}

func (t *Tagger) report(format string, args ...any) {
	if t.Quiet {
		return
	}
	out := t.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, format+"\n", args...)
}
