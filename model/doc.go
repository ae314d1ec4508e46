// Package model provides the document model threaded through every
// transformation stage.
//
// A [Document] starts life at fragment granularity: each [Page] holds the
// positioned text [Fragment] values delivered by the extraction coordinator.
// Stages then derive coarser structure in place:
//
//   - [Line] - fragments sharing a baseline, with heading/list/TOC flags
//   - [Block] - lines grouped by structural role (paragraph, heading, list item, code, quote, toc)
//   - [Unit] - flattened, typed renderables consumed by the Markdown renderer
//
// Corpus-wide statistics live in [Globals]; they are computed once by the
// first stage and treated as read-only afterwards.
//
// # Geometry
//
// Coordinates follow PDF user space: X grows to the right and Y grows
// upwards, so the top of a page has the largest Y.
//
//   - [BBox] - bounding box with union and overlap calculations
//   - [Point] - 2D point with distance calculation
//   - [Matrix] - 2D affine transformation matrix
//
// # Errors
//
// [ErrDecode], [ErrStageViolation] and [ErrResourceExhausted] classify every
// failure the conversion can report; test for them with errors.Is.
package model
