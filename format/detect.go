// Package format identifies input documents so the matching decoder can be
// chosen.
package format

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format represents a supported input format
type Format int

const (
	// Unknown indicates an unrecognized format
	Unknown Format = iota
	// PDF indicates a PDF document
	PDF
	// RunDump indicates a JSON dump of positioned text runs
	RunDump
)

// headerWindow is how far into the data a %PDF- header may start. Readers
// tolerate leading garbage before the header.
const headerWindow = 1024

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case RunDump:
		return "RunDump"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case RunDump:
		return ".json"
	default:
		return ""
	}
}

// Detect determines the format from the filename extension
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return PDF
	case ".json":
		return RunDump
	default:
		return Unknown
	}
}

// DetectFromMagic inspects the leading bytes. A %PDF- header within the
// first kilobyte means PDF; a JSON object means a run dump.
func DetectFromMagic(data []byte) Format {
	window := data
	if len(window) > headerWindow {
		window = window[:headerWindow]
	}
	if bytes.Contains(window, []byte("%PDF-")) {
		return PDF
	}
	trimmed := bytes.TrimLeft(window, " \t\r\n\ufeff")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return RunDump
	}
	return Unknown
}

// DetectBoth prefers the content and falls back to the file name
func DetectBoth(filename string, data []byte) Format {
	if f := DetectFromMagic(data); f != Unknown {
		return f
	}
	return Detect(filename)
}
