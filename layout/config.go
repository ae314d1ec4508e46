package layout

import (
	"github.com/tsawler/pagemark/pipeline"
)

// Config holds the thresholds used by the layout stages
type Config struct {
	// BaselineRatio is the fraction of the smaller glyph height within which
	// two fragments are considered to share a baseline
	// Default: 0.5
	BaselineRatio float64 `yaml:"baseline_ratio"`

	// SpaceGapRatio is the horizontal gap, as a fraction of glyph height, above
	// which a space is inserted between merged fragments
	// Default: 0.15
	SpaceGapRatio float64 `yaml:"space_gap_ratio"`

	// PositionTolerance is the Y bucket size used to match repeated lines
	// across pages
	// Default: 5 points
	PositionTolerance float64 `yaml:"position_tolerance"`

	// MinPageFraction is the fraction of pages a line must repeat on to be
	// treated as a header or footer
	// Default: 0.8
	MinPageFraction float64 `yaml:"min_page_fraction"`

	// MinPages is the minimum number of pages a line must repeat on
	// Default: 2
	MinPages int `yaml:"min_pages"`

	// HeadingMinRatio is the minimum size of a heading relative to body text
	// Default: 1.15
	HeadingMinRatio float64 `yaml:"heading_min_ratio"`

	// HeadingMinDelta is the minimum size difference to body text, in points
	// Default: 1.0
	HeadingMinDelta float64 `yaml:"heading_min_delta"`

	// SizeTolerance clusters heading sizes that differ by at most this much
	// Default: 0.5 points
	SizeTolerance float64 `yaml:"size_tolerance"`

	// MaxHeadingChars excludes longer lines from heading detection
	// Default: 200
	MaxHeadingChars int `yaml:"max_heading_chars"`

	// MaxTOCLabelChars excludes longer lines from TOC detection
	// Default: 120
	MaxTOCLabelChars int `yaml:"max_toc_label_chars"`

	// ParagraphGapRatio is the largest baseline distance, as a multiple of the
	// body line distance, between two lines of one paragraph
	// Default: 1.5
	ParagraphGapRatio float64 `yaml:"paragraph_gap_ratio"`

	// IndentTolerance is the largest left edge difference between lines of one
	// paragraph
	// Default: 3 points
	IndentTolerance float64 `yaml:"indent_tolerance"`

	// QuoteIndentRatio is the minimum indentation of a quote block as a
	// multiple of the body size
	// Default: 2.0
	QuoteIndentRatio float64 `yaml:"quote_indent_ratio"`

	// ListIndentTolerance is the indentation difference below which two list
	// items share a depth
	// Default: 2 points
	ListIndentTolerance float64 `yaml:"list_indent_tolerance"`

	// KeepBoilerplate disables header and footer removal
	KeepBoilerplate bool `yaml:"keep_boilerplate"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		BaselineRatio:       0.5,
		SpaceGapRatio:       0.15,
		PositionTolerance:   5.0,
		MinPageFraction:     0.8,
		MinPages:            2,
		HeadingMinRatio:     1.15,
		HeadingMinDelta:     1.0,
		SizeTolerance:       0.5,
		MaxHeadingChars:     200,
		MaxTOCLabelChars:    120,
		ParagraphGapRatio:   1.5,
		IndentTolerance:     3.0,
		QuoteIndentRatio:    2.0,
		ListIndentTolerance: 2.0,
	}
}

// Stages returns the layout stages in their required order. The rendering
// stage is appended by the caller.
func Stages(cfg Config) []pipeline.Stage {
	stages := []pipeline.Stage{
		NewStatistics(),
		NewLineAssembler(cfg),
	}
	if !cfg.KeepBoilerplate {
		stages = append(stages, NewBoilerplateRemover(cfg))
	}
	return append(stages,
		NewOrientationNormalizer(cfg),
		NewTOCDetector(cfg),
		NewHeadingDetector(cfg),
		NewListDetector(),
		NewBlockGatherer(cfg),
		NewCodeQuoteDetector(cfg),
		NewListLevelDetector(cfg),
		NewLinearizer(cfg),
	)
}
