package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsawler/pagemark"
	"github.com/tsawler/pagemark/batch"
	"github.com/tsawler/pagemark/markdown"
	"github.com/tsawler/pagemark/model"
)

var (
	convertOutDir          string
	convertZip             string
	convertHTML            bool
	convertJoin            bool
	convertPlainTOC        bool
	convertKeepBoilerplate bool
	convertFrontMatter     bool
	convertNoEmphasis      bool
	convertTrace           bool
	convertMaxPages        int
	convertQuiet           bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert PDF files to Markdown",
	Long: `Convert one or more PDF files to Markdown. Files are processed one after
another; a file that fails is reported and the rest are still converted.
Use "-o -" to write a single result to standard output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertOutDir, "out", "o", ".", `output directory, or "-" for stdout`)
	f.StringVar(&convertZip, "zip", "", "also bundle the outputs into this zip file")
	f.BoolVar(&convertHTML, "html", false, "write sanitized HTML instead of Markdown")
	f.BoolVar(&convertJoin, "join", false, "join paragraph lines with spaces")
	f.BoolVar(&convertPlainTOC, "plain-toc", false, "write TOC entries as plain text with page numbers")
	f.BoolVar(&convertKeepBoilerplate, "keep-boilerplate", false, "keep repeated headers and footers")
	f.BoolVar(&convertFrontMatter, "front-matter", false, "prefix Markdown with YAML front matter")
	f.BoolVar(&convertNoEmphasis, "no-emphasis", false, "drop bold and italic markers")
	f.BoolVar(&convertTrace, "trace", false, "print a summary of the document after every stage")
	f.IntVar(&convertMaxPages, "max-pages", 0, "reject documents with more pages (0: config value)")
	f.BoolVarP(&convertQuiet, "quiet", "q", false, "no progress display")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv := converter()
	toStdout := convertOutDir == "-"
	if toStdout && len(args) > 1 {
		return fmt.Errorf("-o - needs exactly one input file")
	}

	ext := ".md"
	if convertHTML {
		ext = ".html"
	}

	var obs batch.Observer
	var bar *progress
	if !convertQuiet && !toStdout {
		bar = newProgress(len(args))
		obs = bar
	}

	results, err := conv.Batch(batch.WithExtension(ext)).Run(ctx, pagemark.FileInputs(args...), obs)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return err
	}

	if convertHTML {
		for i := range results {
			if results[i].Status != batch.StatusDone {
				continue
			}
			out, err := markdown.ToHTML([]byte(results[i].Output))
			if err != nil {
				return fmt.Errorf("%s: %w", results[i].Name, err)
			}
			results[i].Output = string(out)
		}
	}

	failed := 0
	for _, r := range results {
		if r.Status != batch.StatusDone {
			failed++
			if toStdout || bar == nil {
				fmt.Fprintf(os.Stderr, "%s %s: %v\n", failMark("✗"), r.Name, r.Err)
			}
			continue
		}
		if toStdout {
			fmt.Fprint(cmd.OutOrStdout(), r.Output)
			continue
		}
		if err := writeOutput(convertOutDir, r); err != nil {
			return err
		}
	}

	if convertZip != "" {
		if err := writeZip(convertZip, results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
	}
	return nil
}

// converter builds the template converter from config and flags
func converter() *pagemark.Converter {
	conv := pagemark.New().WithConfig(cfg).WithLogger(logger)
	if convertJoin {
		conv = conv.JoinParagraphs()
	}
	if convertPlainTOC {
		conv = conv.PlainTOC()
	}
	if convertKeepBoilerplate {
		conv = conv.KeepBoilerplate()
	}
	if convertFrontMatter && !convertHTML {
		conv = conv.FrontMatter()
	}
	if convertNoEmphasis {
		conv = conv.NoEmphasis()
	}
	if convertMaxPages > 0 {
		conv = conv.MaxPages(convertMaxPages)
	}
	if convertTrace {
		conv = conv.WithTracer(trace)
	}
	return conv
}

func trace(stage string, doc *model.Document) {
	fmt.Fprintf(os.Stderr, "%s %s\n", dim("trace"), summarize(stage, doc))
	for _, m := range doc.Messages {
		fmt.Fprintf(os.Stderr, "%s   %s\n", dim("trace"), m)
	}
}

// summarize counts the document at every granularity, plus the lines and
// blocks the stage annotated before its finalize
func summarize(stage string, doc *model.Document) string {
	lines, blocks, units, marked := 0, 0, 0, 0
	for _, p := range doc.Pages {
		lines += len(p.Lines)
		blocks += len(p.Blocks)
		units += len(p.Units)
		for _, l := range p.Lines {
			if l.Annotation != "" {
				marked++
			}
		}
		for _, b := range p.Blocks {
			if b.Annotation != "" {
				marked++
			}
		}
	}
	return fmt.Sprintf("%-14s lines=%d blocks=%d units=%d annotated=%d messages=%d",
		stage, lines, blocks, units, marked, len(doc.Messages))
}

func writeOutput(dir string, r batch.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, r.OutputName)
	if err := os.WriteFile(path, []byte(r.Output), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Debug().Str("file", r.Name).Str("output", path).Msg("written")
	return nil
}

func writeZip(path string, results []batch.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := batch.WriteArchive(f, results)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s %s (%d file(s))\n", okMark("✓"), path, n)
	return nil
}
