package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdfmill/pdfmill"
	"github.com/pdfmill/pdfmill/batch"
	"github.com/pdfmill/pdfmill/export"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert PDF files to the chosen output format",
	Long: `Convert runs one or more PDF files through the conversion pipeline.
Scanned pages go through OCR; native text is extracted directly. The
artifact for each source is written next to it, or into --out-dir.

Formats: txt, docx, png, jpg, html, markdown, xlsx.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("format", "f", "txt", "output format")
	convertCmd.Flags().StringP("out-dir", "o", "", "output directory (default: next to each source)")
	convertCmd.Flags().String("pages", "", "pages to convert, e.g. 1,3,5")
	convertCmd.Flags().String("range", "", "page range to convert, e.g. 2-10")
	convertCmd.Flags().String("password", "", "password for encrypted sources")
	convertCmd.Flags().StringSlice("lang", nil, "OCR language hints, e.g. eng,deu")
	convertCmd.Flags().Duration("ocr-timeout", 30*time.Second, "per-page OCR deadline")
	convertCmd.Flags().Bool("preprocess", false, "clean up page images before OCR")
	convertCmd.Flags().Float64("classification-threshold", 0, "chars per square inch for a page to count as native text (0 = default)")
	convertCmd.Flags().String("table-sensitivity", "medium", "table detection sensitivity: low, medium, or high")
	convertCmd.Flags().IntP("concurrency", "c", 2, "parallel page and job limit")
	convertCmd.Flags().Int("dpi", 200, "render resolution for image output")
	convertCmd.Flags().Int("quality", 90, "JPEG quality for image output")
	convertCmd.Flags().String("encoding", "utf-8", "text encoding: utf-8, utf-16, utf-16be, gbk")
	convertCmd.Flags().String("line-ending", "lf", "text line ending: lf or crlf")
	convertCmd.Flags().Bool("linked-assets", false, "write images as sidecar files instead of embedding")
	convertCmd.Flags().String("css", "", "link an external stylesheet from HTML output")
	convertCmd.Flags().Bool("no-toc", false, "omit the table of contents from Markdown output")
	convertCmd.Flags().Bool("sheet-per-table", false, "one worksheet per table in XLSX output")
	convertCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")

	viper.BindPFlag("concurrency", convertCmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("lang", convertCmd.Flags().Lookup("lang"))
	viper.BindPFlag("ocr-timeout", convertCmd.Flags().Lookup("ocr-timeout"))
	viper.BindPFlag("dpi", convertCmd.Flags().Lookup("dpi"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	formatName, _ := flags.GetString("format")
	format, err := pdfmill.ParseFormat(formatName)
	if err != nil {
		return err
	}

	outDir, _ := flags.GetString("out-dir")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	password, _ := flags.GetString("password")
	quiet, _ := flags.GetBool("quiet")

	opts, err := convertOptions(cmd)
	if err != nil {
		return err
	}

	specs := make([]pdfmill.Spec, 0, len(args))
	for _, source := range args {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(source)
		}
		specs = append(specs, pdfmill.Spec{
			Source:   source,
			Output:   export.OutputPath(source, dir, format),
			Format:   format,
			Password: password,
		})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	run := pdfmill.Submit(ctx, specs, opts)
	names := sourceNames(run)

	for ev := range run.Events() {
		switch e := ev.(type) {
		case batch.Progress:
			if !quiet && e.PagesTotal > 0 {
				fmt.Fprintf(os.Stderr, "%s: %s %d/%d\n", names[e.Job], e.Stage, e.PagesDone, e.PagesTotal)
			}
		case batch.Terminal:
			printOutcome(names[e.Job], e, quiet)
		}
	}
	run.Wait()

	if err := journalRecord(run); err != nil && !quiet {
		fmt.Fprintln(os.Stderr, "journal:", err)
	}

	var failed int
	for _, job := range run.Jobs() {
		if job.Status() == batch.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(run.Jobs()))
	}
	return nil
}

// convertOptions maps flags and config onto conversion options.
func convertOptions(cmd *cobra.Command) (pdfmill.Options, error) {
	flags := cmd.Flags()
	conv := pdfmill.Open("").
		Concurrency(viper.GetInt("concurrency")).
		Languages(viper.GetStringSlice("lang")...).
		OCRTimeout(viper.GetDuration("ocr-timeout")).
		DPI(viper.GetInt("dpi"))

	if v, _ := flags.GetBool("preprocess"); v {
		conv = conv.Preprocess()
	}
	if v, _ := flags.GetFloat64("classification-threshold"); v > 0 {
		conv = conv.ClassificationThreshold(v)
	}
	if v, _ := flags.GetString("table-sensitivity"); v != "" {
		conv = conv.TableSensitivity(v)
	}
	if v, _ := flags.GetInt("quality"); v > 0 {
		conv = conv.Quality(v)
	}
	if v, _ := flags.GetString("encoding"); v != "" {
		conv = conv.Encoding(v)
	}
	if v, _ := flags.GetString("line-ending"); v != "" {
		conv = conv.LineEnding(v)
	}
	if v, _ := flags.GetBool("linked-assets"); v {
		conv = conv.LinkedAssets()
	}
	if v, _ := flags.GetString("css"); v != "" {
		conv = conv.Stylesheet(v)
	}
	if v, _ := flags.GetBool("no-toc"); v {
		conv = conv.NoTOC()
	}
	if v, _ := flags.GetBool("sheet-per-table"); v {
		conv = conv.SheetPerTable()
	}

	if v, _ := flags.GetString("pages"); v != "" {
		pages, err := parsePages(v)
		if err != nil {
			return pdfmill.Options{}, err
		}
		conv = conv.Pages(pages...)
	}
	if v, _ := flags.GetString("range"); v != "" {
		start, end, err := parseRange(v)
		if err != nil {
			return pdfmill.Options{}, err
		}
		conv = conv.PageRange(start, end)
	}

	return conv.Options(), nil
}

// parsePages parses a comma-separated list of 1-based page numbers.
func parsePages(s string) ([]int, error) {
	var pages []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid page list %q", s)
		}
		pages = append(pages, n)
	}
	return pages, nil
}

// parseRange parses a page range like "2-10" or "3-" (through the end).
func parseRange(s string) (start, end int, err error) {
	lo, hi, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("invalid page range %q", s)
	}
	start, err = strconv.Atoi(strings.TrimSpace(lo))
	if err != nil || start < 1 {
		return 0, 0, fmt.Errorf("invalid page range %q", s)
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		end, err = strconv.Atoi(hi)
		if err != nil || end < start {
			return 0, 0, fmt.Errorf("invalid page range %q", s)
		}
	}
	return start, end, nil
}

// sourceNames maps job IDs to their source paths for display.
func sourceNames(run *pdfmill.Run) map[string]string {
	names := make(map[string]string)
	for _, job := range run.Jobs() {
		names[job.ID] = job.Source
	}
	return names
}

func printOutcome(name string, e batch.Terminal, quiet bool) {
	switch e.Status {
	case batch.StatusFailed:
		fmt.Fprintf(os.Stderr, "%s: FAILED: %v\n", name, e.Err)
	case batch.StatusPartial:
		fmt.Fprintf(os.Stderr, "%s: %s (degraded) -> %s\n", name, e.Status, e.Artifact)
		if !quiet {
			fmt.Fprintln(os.Stderr, pdfmill.FormatWarnings(e.Advisories))
		}
	default:
		if !quiet {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", name, e.Status, e.Artifact)
		}
	}
}
