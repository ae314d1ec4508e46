// Package source defines the decoder collaborator that turns raw document
// bytes into pages of positioned text runs.
//
// Two decoders are provided:
//
//   - [PDF] - reads PDF files with pdfcpu and interprets page content streams
//   - [Runs] - reads a JSON dump of text runs, used for fixtures and replays
//
// # Text Runs
//
// A [TextRun] carries the text rendering matrix of the run in PDF user space.
// Callers combine it with [Page.View] to obtain page coordinates:
//
//	tx := run.Transform.Multiply(page.View())
//	x, y := tx[4], tx[5]
//
// # Font References
//
// The PDF decoder names fonts stored as indirect objects "f<obj>_<gen>" and
// fonts defined inline in a resource dictionary "p<page>_<name>". Both can be
// passed to [Document.ResolveFont].
package source
