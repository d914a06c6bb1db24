package archive_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/willhenshall/hls-transcoder/internal/archive"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, data := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func zipNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func TestAssembleIncludesOnlyNamedFolders(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"track/master.m3u8":           "#EXTM3U",
		"track/low/playlist.m3u8":     "#EXTM3U",
		"track/low/segment_000.ts":    "seg",
		"track/high/playlist.m3u8":    "#EXTM3U",
		"track/high/segment_000.ts":   "seg",
		"episode/master.m3u8":         "#EXTM3U",
		"episode/low/playlist.m3u8":   "#EXTM3U",
		"_sources/track.mp3":          "raw upload",
		"_sources/episode.mp3":        "raw upload",
		"failed-file/low/partial.tmp": "leftover",
	})

	dest := filepath.Join(root, "bundle.zip")
	if err := archive.Assemble(dest, root, []string{"track", "episode"}); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	names := zipNames(t, dest)
	want := []string{
		"episode/low/playlist.m3u8",
		"episode/master.m3u8",
		"track/high/playlist.m3u8",
		"track/high/segment_000.ts",
		"track/low/playlist.m3u8",
		"track/low/segment_000.ts",
		"track/master.m3u8",
	}
	if len(names) != len(want) {
		t.Fatalf("entries = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("entries = %v, want %v", names, want)
		}
	}
}

func TestAssemblePreservesContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"track/master.m3u8": "#EXTM3U\n#EXT-X-VERSION:3\n",
	})

	dest := filepath.Join(root, "bundle.zip")
	if err := archive.Assemble(dest, root, []string{"track"}); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer r.Close()

	f, err := r.Open("track/master.m3u8")
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer f.Close()
	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	if got := string(buf[:n]); got != "#EXTM3U\n#EXT-X-VERSION:3\n" {
		t.Fatalf("entry content = %q", got)
	}
}

func TestAssembleMissingFolderFailsAndRemovesDest(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "bundle.zip")

	err := archive.Assemble(dest, root, []string{"no-such-folder"})
	if !errors.Is(err, archive.ErrArchive) {
		t.Fatalf("err = %v, want ErrArchive", err)
	}
	if _, statErr := os.Stat(dest); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("partial archive left behind: %v", statErr)
	}
}

func TestAssembleEmptyFolderListProducesEmptyZip(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "bundle.zip")

	if err := archive.Assemble(dest, root, nil); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if names := zipNames(t, dest); len(names) != 0 {
		t.Fatalf("entries = %v, want none", names)
	}
}
