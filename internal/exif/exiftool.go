package exif

import (
	"fmt"

	"github.com/barasher/go-exiftool"
)

// ExiftoolWriter writes metadata through the exiftool binary. A fresh
// process pool per write keeps the CLI free of long-lived children; batches
// are small enough that startup cost does not matter.
type ExiftoolWriter struct{}

func (ExiftoolWriter) Write(path string, fields map[string]any) error {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return fmt.Errorf("starting exiftool: %w", err)
	}
	defer et.Close()

	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			fm.SetString(k, val)
		case int64:
			fm.SetInt(k, val)
		case float64:
			fm.SetFloat(k, val)
		default:
			fm.SetString(k, fmt.Sprint(val))
		}
	}

	fms := []exiftool.FileMetadata{fm}
	et.WriteMetadata(fms)
	return fms[0].Err
}
