// Package workflow coordinates transcode jobs end to end.
//
// The Manager owns job admission, the per-job file loop, archive
// assembly, and time-based eviction. Files within one job are processed
// sequentially, as are the ladder variants within one file, so the
// number of concurrent encoder processes is bounded by the configured
// job concurrency alone.
package workflow
