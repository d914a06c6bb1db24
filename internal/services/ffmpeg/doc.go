// Package ffmpeg wraps the external ffmpeg binary for one-variant HLS
// audio encodes.
//
// The client is intentionally thin: it builds the argument list for a
// single (source, bitrate) invocation, interprets the exit status, and
// keeps a bounded tail of the diagnostic stream for error reporting.
// Encoder correctness is assumed; everything above this package only
// sees a segment count or a classified error.
package ffmpeg
