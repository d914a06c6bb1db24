package packaging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/willhenshall/hls-transcoder/internal/config"
	"github.com/willhenshall/hls-transcoder/internal/services/ffmpeg"
)

// MasterPlaylistName is the top-level manifest written into each
// package folder.
const MasterPlaylistName = "master.m3u8"

// audioCodecTag is the RFC 6381 codec string for AAC-LC, matching the
// encoder invocation.
const audioCodecTag = "mp4a.40.2"

// writeMasterPlaylist writes the top-level manifest referencing each
// rung's sub-manifest by relative path, in ladder order.
func writeMasterPlaylist(packageDir string, ladder []config.Rung) error {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	for _, rung := range ladder {
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,CODECS=\"%s\"\n", rung.Bandwidth, audioCodecTag)
		fmt.Fprintf(&b, "%s/%s\n", rung.Label, ffmpeg.PlaylistName)
	}
	return os.WriteFile(filepath.Join(packageDir, MasterPlaylistName), []byte(b.String()), 0o644)
}
