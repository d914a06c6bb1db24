// Package archive bundles a job's completed packages into a single zip
// file for download.
package archive
