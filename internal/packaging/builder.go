package packaging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/willhenshall/hls-transcoder/internal/config"
	"github.com/willhenshall/hls-transcoder/internal/logging"
	"github.com/willhenshall/hls-transcoder/internal/services/ffmpeg"
)

// VariantInfo describes one produced quality variant.
type VariantInfo struct {
	Label        string
	BitrateKbps  int
	Bandwidth    int
	SegmentCount int
}

// Result describes one source file's completed package.
type Result struct {
	// FolderName is the package directory name under the destination
	// root, derived from the source file name.
	FolderName string
	// Dir is the absolute package directory.
	Dir string
	// SegmentCount is the total across all variants.
	SegmentCount int
	Variants     []VariantInfo
}

// Builder drives the variant encoder across the full quality ladder for
// one source file at a time.
type Builder struct {
	cfg    *config.Config
	client ffmpeg.Client
	logger *slog.Logger
}

// NewBuilder constructs a Builder.
func NewBuilder(cfg *config.Config, client ffmpeg.Client, logger *slog.Logger) *Builder {
	return &Builder{
		cfg:    cfg,
		client: client,
		logger: logging.WithComponent(logger, "packaging"),
	}
}

// Build encodes sourcePath at every ladder rung, lowest first, into
// destRoot/<folder>/<label>/ and writes the master playlist once every
// rung has succeeded. The first rung failure aborts the file and wraps
// as ErrPackageBuild; partially written variant directories are left
// for whole-job cleanup.
func (b *Builder) Build(ctx context.Context, originalName, sourcePath, destRoot string) (*Result, error) {
	folder := FolderName(originalName)
	packageDir := filepath.Join(destRoot, folder)
	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: ensure package directory: %v", ErrPackageBuild, err)
	}

	logger := b.logger.With(logging.String(logging.FieldFile, originalName))

	result := &Result{FolderName: folder, Dir: packageDir}
	for _, rung := range b.cfg.Ladder {
		variantDir := filepath.Join(packageDir, rung.Label)
		logger.Info("encoding variant",
			logging.String(logging.FieldVariant, rung.Label),
			logging.Int("bitrate_kbps", rung.BitrateKbps),
		)

		segments, err := b.client.EncodeVariant(ctx, ffmpeg.EncodeRequest{
			InputPath:      sourcePath,
			OutputDir:      variantDir,
			BitrateKbps:    rung.BitrateKbps,
			SegmentSeconds: b.cfg.FFmpeg.SegmentSeconds,
			SampleRate:     b.cfg.FFmpeg.SampleRate,
			Channels:       b.cfg.FFmpeg.Channels,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: variant %s: %w", ErrPackageBuild, rung.Label, err)
		}

		result.SegmentCount += segments
		result.Variants = append(result.Variants, VariantInfo{
			Label:        rung.Label,
			BitrateKbps:  rung.BitrateKbps,
			Bandwidth:    rung.Bandwidth,
			SegmentCount: segments,
		})
		logger.Info("variant complete",
			logging.String(logging.FieldVariant, rung.Label),
			logging.Int("segments", segments),
		)
	}

	if err := writeMasterPlaylist(packageDir, b.cfg.Ladder); err != nil {
		return nil, fmt.Errorf("%w: write master playlist: %v", ErrPackageBuild, err)
	}

	logger.Info("package complete",
		logging.String("folder", folder),
		logging.Int("segments", result.SegmentCount),
	)
	return result, nil
}
