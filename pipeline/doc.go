// Package pipeline applies an ordered list of stages to a document.
//
// Every [Stage] exposes two operations. Apply performs the stage's primary
// pass; Finalize closes out deferred effects before the next stage reads the
// model. The [Driver] finalizes stage i-1 with the document its own Apply
// produced before applying stage i, and never finalizes the last stage.
//
//	d := pipeline.New(stages...)
//	out, err := d.Run(ctx, doc)
//
// Any error aborts the run and is reported as a *[StageError]; no partial
// document is returned.
package pipeline
