package config

const (
	defaultWorkDir                   = "~/.local/share/hls-transcoder/jobs"
	defaultLogDir                    = "~/.local/share/hls-transcoder/logs"
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
	defaultFFmpegBinary              = "ffmpeg"
	defaultSegmentSeconds            = 10
	defaultSampleRate                = 44100
	defaultChannels                  = 2
	defaultStderrTailLines           = 20
	defaultMaxConcurrentJobs         = 2
	defaultSweepIntervalSeconds      = 300
	defaultJobTTLMinutes             = 120
	defaultInlineCleanupGraceSeconds = 30
)

// DefaultLadder returns the quality ladder used when configuration does not
// override it: three AAC renditions, lowest first.
func DefaultLadder() []Rung {
	return []Rung{
		{Label: "low", BitrateKbps: 64, Bandwidth: 69000},
		{Label: "medium", BitrateKbps: 128, Bandwidth: 138000},
		{Label: "high", BitrateKbps: 192, Bandwidth: 207000},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		FFmpeg: FFmpeg{
			Binary:          defaultFFmpegBinary,
			SegmentSeconds:  defaultSegmentSeconds,
			SampleRate:      defaultSampleRate,
			Channels:        defaultChannels,
			StderrTailLines: defaultStderrTailLines,
		},
		Ladder: DefaultLadder(),
		Workflow: Workflow{
			MaxConcurrentJobs:         defaultMaxConcurrentJobs,
			SweepIntervalSeconds:      defaultSweepIntervalSeconds,
			JobTTLMinutes:             defaultJobTTLMinutes,
			InlineCleanupGraceSeconds: defaultInlineCleanupGraceSeconds,
		},
	}
}
