// Package batch converts a list of files one at a time.
//
// Each file moves through pending, loading, processing and then done or
// error. A failed file does not stop the batch. Overall progress is reported
// as completed files plus the extraction percent of the current file:
//
//	p := batch.NewProcessor(convert, batch.WithLogger(log))
//	results, err := p.Run(ctx, inputs, batch.ObserverFunc(func(e batch.Event) {
//		fmt.Printf("%s %s %d%%\n", e.File, e.Status, e.Percent)
//	}))
//
// [WriteArchive] bundles the successful outputs into a zip file.
package batch
