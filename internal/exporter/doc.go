// Package exporter persists the pipeline's output tables. All writes are
// atomic: data goes to a temp file in the target directory first and is
// renamed into place, so a concurrently reading dashboard never observes a
// partial file.
package exporter
