// Package layout provides the document layout stages that turn positioned
// text fragments into classified blocks and renderable units.
//
// Each stage implements [pipeline.Stage] and is meant to run in the order
// returned by [Stages]:
//
//   - [Statistics] - body size, line distance, margins and font styles
//   - [LineAssembler] - groups fragments sharing a baseline into lines
//   - [BoilerplateRemover] - drops headers, footers and page numbers
//   - [OrientationNormalizer] - restores reading order of rotated text
//   - [TOCDetector] - flags table-of-contents entries
//   - [HeadingDetector] - ranks larger-than-body lines as headings
//   - [ListDetector] - finds bullet and numbered items
//   - [BlockGatherer] - groups lines into paragraphs, headings and items
//   - [CodeQuoteDetector] - reclassifies monospace and indented blocks
//   - [ListLevelDetector] - computes list nesting depth
//   - [Linearizer] - flattens blocks into [model.Unit] values
//
// # Configuration
//
// All thresholds live in [Config]:
//
//	cfg := layout.DefaultConfig()
//	cfg.HeadingMinRatio = 1.3
//	driver := pipeline.New(layout.Stages(cfg)...)
//
// Stages mark lines and blocks Removed during Apply; the default finalizer
// from [pipeline.Base] sweeps them before the next stage runs.
package layout
