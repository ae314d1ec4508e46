package batch

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// DefaultArchiveName is the file name offered for a batch archive
const DefaultArchiveName = "markdown-files.zip"

// OutputName derives the output file name for an input. A trailing ".pdf" is
// replaced case-insensitively, any other extension is replaced too, and names
// without one get ext appended.
func OutputName(name, ext string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = "document"
	}
	if len(base) > 4 && strings.EqualFold(base[len(base)-4:], ".pdf") {
		return base[:len(base)-4] + ext
	}
	if e := path.Ext(base); e != "" && e != base {
		return strings.TrimSuffix(base, e) + ext
	}
	return base + ext
}

// WriteArchive writes the outputs of all done results into a zip archive.
// Duplicate output names are disambiguated as "name (2).md". It returns the
// number of entries written.
func WriteArchive(w io.Writer, results []Result) (int, error) {
	zw := zip.NewWriter(w)
	seen := make(map[string]int)
	n := 0
	for _, r := range results {
		if r.Status != StatusDone {
			continue
		}
		name := uniqueName(seen, r.OutputName)
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: time.Now(),
		})
		if err != nil {
			return n, fmt.Errorf("archive entry %s: %w", name, err)
		}
		if _, err := io.WriteString(f, r.Output); err != nil {
			return n, fmt.Errorf("archive entry %s: %w", name, err)
		}
		n++
	}
	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("close archive: %w", err)
	}
	return n, nil
}

func uniqueName(seen map[string]int, name string) string {
	key := strings.ToLower(name)
	seen[key]++
	if seen[key] == 1 {
		return name
	}
	ext := path.Ext(name)
	for i := seen[key]; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), i, ext)
		if _, taken := seen[strings.ToLower(candidate)]; !taken {
			seen[strings.ToLower(candidate)] = 1
			return candidate
		}
	}
}
