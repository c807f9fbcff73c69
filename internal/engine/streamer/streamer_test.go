package streamer

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/crateful/unbox/internal/domain"
)

func buildZip(t *testing.T, files map[string]string, dirs []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, dir := range dirs {
		if _, err := zw.Create(dir); err != nil {
			t.Fatalf("creating dir %s: %v", dir, err)
		}
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

func buildTarGz(t *testing.T, files map[string]string, dirs []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	for _, dir := range dirs {
		hdr := &tar.Header{
			Name:     dir,
			Typeflag: tar.TypeDir,
			Mode:     0755,
			ModTime:  time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing dir header %s: %v", dir, err)
		}
	}
	for name, content := range files {
		hdr := &tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Size:     int64(len(content)),
			Mode:     0644,
			ModTime:  time.Now(),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing header %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar: %v", err)
	}
	if err := gzw.Close(); err != nil {
		t.Fatalf("closing gzip: %v", err)
	}
	return buf.Bytes()
}

func entryByPath(entries []domain.Entry, path string) *domain.Entry {
	for i := range entries {
		if entries[i].Path == path {
			return &entries[i]
		}
	}
	return nil
}

func TestAttemptZip(t *testing.T) {
	data := buildZip(t, map[string]string{
		"readme.md":      "hello",
		"docs/guide.txt": "guide text",
	}, []string{"docs/"})

	eng := New()
	attempt, failure := eng.Attempt(context.Background(),
		&domain.Request{Data: data, FileName: "test.zip"},
		domain.Format{ID: domain.FormatZip})
	if failure != nil {
		t.Fatalf("Attempt failed: %v", failure)
	}

	if len(attempt.Entries) != 3 {
		t.Fatalf("got %d entries, expected 3", len(attempt.Entries))
	}

	dir := entryByPath(attempt.Entries, "docs/")
	if dir == nil || !dir.IsDir || dir.Size != 0 {
		t.Errorf("directory entry docs/ missing or malformed: %+v", dir)
	}

	file := entryByPath(attempt.Entries, "docs/guide.txt")
	if file == nil {
		t.Fatal("entry docs/guide.txt not found")
	}
	if string(file.Data) != "guide text" {
		t.Errorf("payload = %q, expected %q", file.Data, "guide text")
	}
	if file.Size != int64(len("guide text")) {
		t.Errorf("size = %d, expected %d", file.Size, len("guide text"))
	}
}

func TestAttemptZipUniquePaths(t *testing.T) {
	data := buildZip(t, map[string]string{"a.txt": "x", "b.txt": "y"}, nil)

	eng := New()
	attempt, failure := eng.Attempt(context.Background(),
		&domain.Request{Data: data},
		domain.Format{ID: domain.FormatZip})
	if failure != nil {
		t.Fatalf("Attempt failed: %v", failure)
	}

	seen := make(map[string]bool)
	for _, e := range attempt.Entries {
		if seen[e.Path] {
			t.Errorf("duplicate path %s", e.Path)
		}
		seen[e.Path] = true
	}
}

func TestAttemptTarGz(t *testing.T) {
	data := buildTarGz(t, map[string]string{
		"a.txt":     "one",
		"b.txt":     "two",
		"sub/c.txt": "three",
	}, []string{"empty/"})

	eng := New()
	attempt, failure := eng.Attempt(context.Background(),
		&domain.Request{Data: data, FileName: "archive.tar.gz"},
		domain.Format{ID: domain.FormatTarGz})
	if failure != nil {
		t.Fatalf("Attempt failed: %v", failure)
	}

	if len(attempt.Entries) != 4 {
		t.Fatalf("got %d entries, expected 4", len(attempt.Entries))
	}

	var dirs int
	for _, e := range attempt.Entries {
		if e.IsDir {
			dirs++
			if e.Path[len(e.Path)-1] != '/' {
				t.Errorf("directory path %q missing trailing slash", e.Path)
			}
			if e.Size != 0 {
				t.Errorf("directory %q has size %d, expected 0", e.Path, e.Size)
			}
		}
	}
	if dirs != 1 {
		t.Errorf("got %d directory entries, expected 1", dirs)
	}
}

func TestAttemptPlainTar(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	hdr := &tar.Header{Name: "f.txt", Typeflag: tar.TypeReg, Size: 4, Mode: 0644}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte("data")); err != nil {
		t.Fatal(err)
	}
	tw.Close()

	eng := New()
	attempt, failure := eng.Attempt(context.Background(),
		&domain.Request{Data: buf.Bytes()},
		domain.Format{ID: domain.FormatTar})
	if failure != nil {
		t.Fatalf("Attempt failed: %v", failure)
	}
	if len(attempt.Entries) != 1 || string(attempt.Entries[0].Data) != "data" {
		t.Errorf("unexpected entries: %+v", attempt.Entries)
	}
}

func TestAttemptGarbageRar(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xA5, 0x5A}, 25)

	eng := New()
	_, failure := eng.Attempt(context.Background(),
		&domain.Request{Data: garbage, FileName: "junk.rar"},
		domain.Format{ID: domain.FormatRar})
	if failure == nil {
		t.Fatal("expected a failure for garbage rar input")
	}
	if !failure.Recoverable {
		t.Errorf("failure not recoverable: %+v", failure)
	}
	if failure.Engine != "streamer" {
		t.Errorf("engine = %q, expected streamer", failure.Engine)
	}
}

func TestAttemptGarbageZip(t *testing.T) {
	eng := New()
	_, failure := eng.Attempt(context.Background(),
		&domain.Request{Data: []byte("this is not a zip file at all")},
		domain.Format{ID: domain.FormatZip})
	if failure == nil {
		t.Fatal("expected a failure for garbage zip input")
	}
	if failure.Code != domain.UnsupportedFormat {
		t.Errorf("code = %s, expected %s", failure.Code, domain.UnsupportedFormat)
	}
}

func TestAttemptUnsupportedFormat(t *testing.T) {
	eng := New()
	_, failure := eng.Attempt(context.Background(),
		&domain.Request{Data: []byte("CD001 etc")},
		domain.Format{ID: domain.FormatIso})
	if failure == nil {
		t.Fatal("expected a failure for iso input")
	}
	if failure.Code != domain.UnsupportedFormat || !failure.Recoverable {
		t.Errorf("unexpected failure: %+v", failure)
	}
}

func TestAttemptEmptyInput(t *testing.T) {
	eng := New()
	_, failure := eng.Attempt(context.Background(),
		&domain.Request{},
		domain.Format{ID: domain.FormatZip})
	if failure == nil {
		t.Fatal("expected a failure for empty input")
	}
}
