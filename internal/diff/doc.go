// Package diff partitions concatenated unified-diff text into per-file
// segments and resolves segment headers to repository paths.
//
// The segmenter does not interpret diff syntax beyond the separator
// convention: any line starting with the separator prefix ("diff" for
// git-style output) begins a new segment, and everything up to the next
// separator is that segment's opaque body. Hunk headers are only parsed
// by NewFileRanges, an optional helper for validating line-number issues
// against the post-change line ranges a diff actually covers.
package diff
