// Package extractors provides the extractor registry and, in its
// subpackages, one Extractor implementation per family of file formats.
// Each extractor knows how to turn a file of its formats into plain text.
//
// The registry is built explicitly at startup from the extractors that are
// compiled in; there is no runtime probing for optional libraries.
package extractors
