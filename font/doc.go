// Package font resolves and describes the fonts referenced by extracted text.
//
// Fonts are identified by the reference string the source decoder attaches to
// every text run. Only references accepted by a [Predicate] are resolved, and
// each accepted reference is resolved at most once per file by a [Resolver].
//
// # Descriptors
//
// A [Descriptor] carries the metrics and flags of one font. Its [Style]
// (bold, italic, monospace) is derived from the descriptor flags first and
// falls back to heuristics on the PostScript base font name:
//
//	style := desc.Style()
//	if style.Monospace {
//	    // render as code
//	}
//
// # Text Decoding
//
// [CMap] maps character codes to Unicode using embedded ToUnicode streams.
// [DecodeSimple] handles single-byte encodings (WinAnsiEncoding,
// MacRomanEncoding) and UTF-16 byte order marks.
package font
