// Package extractors provides the Extractor registry and, in subpackages,
// the format-specific extractors. Each extractor knows how to turn one
// payload format into plain text.
//
// Extractors are registered with the Registry at startup.
package extractors
