package pdfmill

import (
	"time"

	"github.com/pdfmill/pdfmill/batch"
	"github.com/pdfmill/pdfmill/classify"
	"github.com/pdfmill/pdfmill/export"
	"github.com/pdfmill/pdfmill/ocr"
	"github.com/pdfmill/pdfmill/reconstruct"
)

// Options holds configuration for a conversion.
type Options struct {
	// Page selection (1-indexed in API, stored as-is)
	pages      []int
	rangeStart int
	rangeEnd   int

	// Source access
	password string

	// Recognition
	languages  []string
	ocrTimeout time.Duration
	preprocess bool
	engine     ocr.Engine

	// Analysis
	classifyThreshold float64 // chars/in^2; 0 means the default
	tableSensitivity  string  // "low", "medium", or "high"

	// Output
	dpi           int
	quality       int
	encoding      string
	lineEnding    string
	embedAssets   bool
	cssHref       string
	includeTOC    bool
	sheetPerTable bool

	// Orchestration
	concurrency int
}

// defaultOptions returns the default conversion options.
func defaultOptions() Options {
	return Options{
		pages:       nil, // nil means all pages
		ocrTimeout:  30 * time.Second,
		dpi:         200,
		quality:     90,
		encoding:    "utf-8",
		lineEnding:  "lf",
		embedAssets: true,
		includeTOC:  true,
		concurrency: 2,
	}
}

// clone creates a deep copy of Options.
func (o Options) clone() Options {
	newOpts := o

	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	if o.languages != nil {
		newOpts.languages = make([]string, len(o.languages))
		copy(newOpts.languages, o.languages)
	}

	return newOpts
}

// batchConfig maps the options onto the orchestrator's configuration.
func (o Options) batchConfig() batch.Config {
	cfg := batch.DefaultConfig()
	cfg.Concurrency = o.concurrency
	cfg.OCRTimeout = o.ocrTimeout
	cfg.Languages = o.languages
	cfg.Preprocess = o.preprocess
	cfg.Engine = o.engine
	cls := classify.DefaultConfig()
	if o.classifyThreshold > 0 {
		cls.DensityThreshold = o.classifyThreshold
	}
	cfg.Classify = cls

	rec := reconstruct.DefaultConfig()
	rec.Tables = reconstruct.TableConfigFor(reconstruct.ParseSensitivity(o.tableSensitivity))
	cfg.Reconstruct = rec
	cfg.Export = o.exportOptions()
	cfg.Range = batch.PageRange{Start: o.rangeStart, End: o.rangeEnd}
	cfg.Pages = o.pages
	return cfg
}

// exportOptions maps the output-related options onto exporter settings.
func (o Options) exportOptions() export.Options {
	opts := export.DefaultOptions()
	opts.Encoding = o.encoding
	opts.LineEnding = o.lineEnding
	opts.DPI = o.dpi
	opts.Quality = o.quality
	opts.EmbedImages = o.embedAssets
	opts.CSSHref = o.cssHref
	opts.IncludeTOC = o.includeTOC
	opts.SheetPerTable = o.sheetPerTable
	return opts
}
