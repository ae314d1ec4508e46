package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/tsawler/pagemark/extract"
)

func echo(ctx context.Context, name string, data []byte, obs extract.Observer) (string, error) {
	if obs != nil {
		obs.Progress(extract.Snapshot{File: name, Percent: 50})
	}
	if string(data) == "bad" {
		return "", errors.New("decode failed")
	}
	return "# " + string(data) + "\n", nil
}

type recorder struct {
	events []Event
}

func (r *recorder) BatchEvent(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) percents(index int, status Status) []int {
	var out []int
	for _, e := range r.events {
		if e.Index == index && e.Status == status {
			out = append(out, e.Percent)
		}
	}
	return out
}

func TestStatus_String(t *testing.T) {
	tests := map[Status]string{
		StatusPending:    "pending",
		StatusLoading:    "loading",
		StatusProcessing: "processing",
		StatusDone:       "done",
		StatusError:      "error",
		Status(42):       "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestProcessor_OverallProgress(t *testing.T) {
	rec := &recorder{}
	inputs := []Input{{Name: "a.pdf", Data: []byte("A")}, {Name: "b.pdf", Data: []byte("B")}}

	results, err := NewProcessor(echo).Run(context.Background(), inputs, rec)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	if got := rec.percents(0, StatusDone); len(got) != 1 || got[0] != 50 {
		t.Errorf("first file done percent = %v, want [50]", got)
	}
	if got := rec.percents(1, StatusDone); len(got) != 1 || got[0] != 100 {
		t.Errorf("second file done percent = %v, want [100]", got)
	}

	// mid-file progress of the second file: one file done plus half of the next
	found := false
	for _, p := range rec.percents(1, StatusProcessing) {
		if p == 75 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a 75%% event for the second file, got %v", rec.percents(1, StatusProcessing))
	}

	var last int
	for _, e := range rec.events {
		if e.Percent < last && e.Status != StatusPending {
			t.Errorf("percent went backwards: %d after %d", e.Percent, last)
		}
		if e.Status != StatusPending {
			last = e.Percent
		}
		if e.BatchID == "" || e.Total != 2 {
			t.Errorf("event missing batch fields: %+v", e)
		}
	}

	if results[0].Output != "# A\n" || results[0].OutputName != "a.md" {
		t.Errorf("result[0] = %+v", results[0])
	}
}

func TestProcessor_FailureContinues(t *testing.T) {
	inputs := []Input{
		{Name: "one.pdf", Data: []byte("bad")},
		{Name: "two.pdf", Data: []byte("ok")},
	}
	results, err := NewProcessor(echo).Run(context.Background(), inputs, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Status != StatusError || results[0].Err == nil {
		t.Errorf("first result = %+v, want error", results[0])
	}
	if results[1].Status != StatusDone || results[1].Output != "# ok\n" {
		t.Errorf("second result = %+v, want done", results[1])
	}
}

func TestProcessor_LazyLoad(t *testing.T) {
	loaded := 0
	inputs := []Input{
		{Name: "lazy.pdf", Load: func(context.Context) ([]byte, error) {
			loaded++
			return []byte("L"), nil
		}},
		{Name: "broken.pdf", Load: func(context.Context) ([]byte, error) {
			return nil, io.ErrUnexpectedEOF
		}},
	}
	results, err := NewProcessor(echo).Run(context.Background(), inputs, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loaded != 1 || results[0].Output != "# L\n" {
		t.Errorf("lazy load: loaded=%d result=%+v", loaded, results[0])
	}
	if !errors.Is(results[1].Err, io.ErrUnexpectedEOF) {
		t.Errorf("load error = %v, want ErrUnexpectedEOF", results[1].Err)
	}
}

func TestProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := NewProcessor(echo).Run(ctx, []Input{{Name: "a.pdf", Data: []byte("A")}}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.md"},
		{"REPORT.PDF", "REPORT.md"},
		{"dir/sub/paper.Pdf", "paper.md"},
		{"notes.txt", "notes.md"},
		{"README", "README.md"},
		{"archive.tar.pdf", "archive.tar.md"},
	}
	for _, tc := range tests {
		if got := OutputName(tc.in, ".md"); got != tc.want {
			t.Errorf("OutputName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWriteArchive(t *testing.T) {
	results := []Result{
		{OutputName: "a.md", Status: StatusDone, Output: "first"},
		{OutputName: "a.md", Status: StatusDone, Output: "second"},
		{OutputName: "b.md", Status: StatusError},
		{OutputName: "c.md", Status: StatusDone, Output: "third"},
	}
	var buf bytes.Buffer
	n, err := WriteArchive(&buf, results)
	if err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	if n != 3 {
		t.Errorf("wrote %d entries, want 3", n)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	got := make(map[string]string)
	var names []string
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		body, _ := io.ReadAll(rc)
		rc.Close()
		got[f.Name] = string(body)
		names = append(names, f.Name)
	}
	sort.Strings(names)
	want := []string{"a (2).md", "a.md", "c.md"}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entries = %v, want %v", names, want)
			break
		}
	}
	if got["a (2).md"] != "second" {
		t.Errorf("duplicate entry body = %q", got["a (2).md"])
	}
}
