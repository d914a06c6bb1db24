// Package packaging turns one source file into a complete
// adaptive-bitrate package: one directory per quality-ladder rung plus
// a master playlist referencing every rung.
//
// The ladder is all-or-nothing per file. A source either yields a full
// package or none; a failed rung aborts the file and no master playlist
// is written.
package packaging
