package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/willhenshall/hls-transcoder/internal/fileutil"
)

func TestCopyFileCreatesParents(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.bin")
	if err := os.WriteFile(src, []byte("payload"), 0o600); err != nil {
		t.Fatalf("write src: %v", err)
	}

	dst := filepath.Join(base, "deep", "nested", "dst.bin")
	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("dst content = %q", data)
	}
}

func TestCopyFileOverwrites(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.bin")
	dst := filepath.Join(base, "dst.bin")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := os.WriteFile(dst, []byte("old old old"), 0o644); err != nil {
		t.Fatalf("write dst: %v", err)
	}

	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "new" {
		t.Fatalf("dst content = %q", data)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	base := t.TempDir()
	if err := fileutil.CopyFile(filepath.Join(base, "absent"), filepath.Join(base, "dst")); err == nil {
		t.Fatal("CopyFile succeeded with missing source")
	}
}
