package pagemark

import (
	"github.com/rs/zerolog"

	"github.com/tsawler/pagemark/extract"
	"github.com/tsawler/pagemark/layout"
	"github.com/tsawler/pagemark/markdown"
	"github.com/tsawler/pagemark/pipeline"
)

// options holds the configuration of a Converter
type options struct {
	// Page selection (1-indexed), nil means all pages
	pages []int

	extract extract.Config
	layout  layout.Config
	render  markdown.Options

	frontMatter bool

	logger   zerolog.Logger
	observer extract.Observer
	tracer   pipeline.Tracer
}

// defaultOptions returns the default conversion options
func defaultOptions() options {
	return options{
		extract: extract.DefaultConfig(),
		layout:  layout.DefaultConfig(),
		render:  markdown.DefaultOptions(),
		logger:  zerolog.Nop(),
	}
}

// clone creates a deep copy of options
func (o options) clone() options {
	n := o
	if o.pages != nil {
		n.pages = make([]int, len(o.pages))
		copy(n.pages, o.pages)
	}
	return n
}
