package bundle

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type entry struct {
	name string
	data string
}

func writeZip(t *testing.T, path string, entries []entry) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.data)); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "glad.zip")
	entries := []entry{
		{name: "src/gl.c", data: "#include <glad/gl.h>\n"},
		{name: "include/", data: ""},
		{name: "include/glad/gl.h", data: "#ifndef GLAD_GL_H_\n#define GLAD_GL_H_\n#endif\n"},
		{name: "include/KHR/khrplatform.h", data: "/* khr */\n"},
	}
	writeZip(t, archive, entries)

	dest := filepath.Join(dir, "glad")
	files, err := Extract(archive, dest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	want := []string{"include/KHR/khrplatform.h", "include/glad/gl.h", "src/gl.c"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Extract() files = %v, want %v", files, want)
	}

	for _, e := range entries {
		path := filepath.Join(dest, filepath.FromSlash(e.name))
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("missing %s: %v", e.name, err)
			continue
		}
		if info.IsDir() {
			continue
		}
		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", e.name, err)
		}
		if string(got) != e.data {
			t.Errorf("%s content = %q, want %q", e.name, got, e.data)
		}
	}

	// Nothing beyond the archive contents.
	var onDisk []string
	err = filepath.Walk(dest, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(dest, path)
			onDisk = append(onDisk, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if !reflect.DeepEqual(onDisk, want) {
		t.Errorf("files on disk = %v, want %v", onDisk, want)
	}
}

func TestExtractOverwrites(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "glad.zip")
	dest := filepath.Join(dir, "glad")

	if err := os.MkdirAll(filepath.Join(dest, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dest, "src", "gl.c"), []byte("stale content that is longer"), 0644); err != nil {
		t.Fatal(err)
	}

	writeZip(t, archive, []entry{{name: "src/gl.c", data: "fresh"}})

	if _, err := Extract(archive, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "src", "gl.c"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fresh" {
		t.Errorf("expected overwritten content, got %q", got)
	}
}

func TestExtractIllegalPath(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{name: "parent traversal", entry: "../evil.h"},
		{name: "nested traversal", entry: "include/../../evil.h"},
		{name: "absolute", entry: "/etc/evil.h"},
		{name: "backslash", entry: `..\evil.h`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			archive := filepath.Join(dir, "glad.zip")
			writeZip(t, archive, []entry{{name: tt.entry, data: "x"}})

			_, err := Extract(archive, filepath.Join(dir, "glad"))
			if !errors.Is(err, ErrIllegalPath) {
				t.Errorf("Extract() error = %v, want ErrIllegalPath", err)
			}
			if _, err := os.Stat(filepath.Join(dir, "evil.h")); !os.IsNotExist(err) {
				t.Errorf("entry escaped destination")
			}
		})
	}
}

func TestExtractNotAZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "glad.zip")
	if err := os.WriteFile(archive, []byte("<html>oops</html>"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Extract(archive, filepath.Join(dir, "glad")); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestExtractMissingArchive(t *testing.T) {
	dir := t.TempDir()
	if _, err := Extract(filepath.Join(dir, "missing.zip"), filepath.Join(dir, "glad")); err == nil {
		t.Fatal("expected error for missing archive")
	}
}
