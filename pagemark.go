// Package pagemark provides a fluent API for converting PDF files to
// Markdown.
//
// Basic usage:
//
//	md, err := pagemark.Open("document.pdf").Markdown(ctx)
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	md, err := pagemark.Open("report.pdf").
//	    JoinParagraphs().
//	    PlainTOC().
//	    FrontMatter().
//	    Markdown(ctx)
//
// Several files can be converted in one batch with per-file status and
// overall progress:
//
//	results, err := pagemark.New().Batch().Run(ctx, inputs, observer)
//
// For advanced use cases the extract, layout and markdown packages can be
// driven directly.
package pagemark

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tsawler/pagemark/batch"
	"github.com/tsawler/pagemark/extract"
	"github.com/tsawler/pagemark/format"
	"github.com/tsawler/pagemark/source"
)

// ErrNoInput is returned by terminal operations on a Converter without a
// file or data
var ErrNoInput = errors.New("pagemark: no input")

// New returns a Converter without input. It serves as a template for Batch
// and the HTTP server.
func New() *Converter {
	return &Converter{options: defaultOptions()}
}

// Open returns a Converter reading the named file when a terminal operation
// runs. The decoder is chosen from the content, see DecoderFor.
//
// Example:
//
//	md, err := pagemark.Open("document.pdf").Markdown(ctx)
func Open(filename string) *Converter {
	return &Converter{filename: filename, name: filepath.Base(filename), options: defaultOptions()}
}

// FromBytes returns a Converter for in-memory data. name is used for logging,
// front matter and to pick the decoder.
func FromBytes(name string, data []byte) *Converter {
	return &Converter{name: name, data: data, options: defaultOptions()}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	md := pagemark.Must(pagemark.Open("document.pdf").Markdown(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// DecoderFor picks the decoder from the leading bytes, then the file name.
// Anything unrecognized goes to the PDF decoder, which reports the failure.
func DecoderFor(name string, data []byte) source.Decoder {
	if format.DetectBoth(name, data) == format.RunDump {
		return source.Runs{}
	}
	return source.PDF{}
}

// Batch returns a sequential processor converting each input with this
// Converter's configuration
//
// Example:
//
//	p := pagemark.New().JoinParagraphs().Batch(batch.WithLogger(log))
//	results, err := p.Run(ctx, inputs, nil)
func (c *Converter) Batch(opts ...batch.Option) *batch.Processor {
	opts = append([]batch.Option{batch.WithLogger(c.options.logger)}, opts...)
	return batch.NewProcessor(c.ConvertFunc(), opts...)
}

// ConvertFunc adapts this Converter's configuration to a batch.ConvertFunc
func (c *Converter) ConvertFunc() batch.ConvertFunc {
	tmpl := c.clone()
	return func(ctx context.Context, name string, data []byte, obs extract.Observer) (string, error) {
		conv := tmpl.clone()
		conv.filename = ""
		conv.name = name
		conv.data = data
		if obs != nil {
			conv.options.observer = obs
		}
		return conv.Markdown(ctx)
	}
}

// FileInputs builds lazily loaded batch inputs for files on disk
func FileInputs(paths ...string) []batch.Input {
	inputs := make([]batch.Input, len(paths))
	for i, p := range paths {
		p := p
		inputs[i] = batch.Input{
			Name: filepath.Base(p),
			Load: func(context.Context) ([]byte, error) {
				data, err := os.ReadFile(p)
				if err != nil {
					return nil, fmt.Errorf("read %s: %w", p, err)
				}
				return data, nil
			},
		}
	}
	return inputs
}
