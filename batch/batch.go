// Package batch drives conversion jobs through the pipeline with
// bounded concurrency, progress events, and cooperative cancellation.
//
// A Run owns its jobs for their whole lifetime. Workers pull jobs in
// submission order; page tasks inside a job run in parallel, bounded
// by the run-wide concurrency limit, and their results are reassembled
// by page index so block order always matches source order. The OCR
// engine is the only resource shared between page tasks and must be
// safe for concurrent calls.
//
// Cancellation is checked at page boundaries: in-flight pages finish,
// no further pages start, and jobs still queued never start at all.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdfmill/pdfmill/classify"
	"github.com/pdfmill/pdfmill/export"
	"github.com/pdfmill/pdfmill/model"
	"github.com/pdfmill/pdfmill/ocr"
	"github.com/pdfmill/pdfmill/pdfread"
	"github.com/pdfmill/pdfmill/reconstruct"
)

// PageRange selects a contiguous 1-based page span, inclusive. The
// zero value selects all pages.
type PageRange struct {
	Start int
	End   int
}

// Config holds run-wide settings. Zero fields take the defaults from
// DefaultConfig.
type Config struct {
	// Concurrency bounds parallel page tasks and, with them, in-flight
	// OCR calls across the whole run.
	Concurrency int

	// OCRTimeout is the per-recognition-call deadline.
	OCRTimeout time.Duration

	// Languages are Tesseract language hints for recognition.
	Languages []string

	// Preprocess enables image cleanup before recognition.
	Preprocess bool

	// Engine is the OCR backend. Nil selects the built-in Tesseract
	// backend (a failing stub when built without the ocr tag).
	Engine ocr.Engine

	// Classify holds scan classification parameters.
	Classify classify.Config

	// Reconstruct holds layout reconstruction parameters.
	Reconstruct reconstruct.Config

	// Export holds per-format output settings.
	Export export.Options

	// Range restricts conversion to a span of pages.
	Range PageRange

	// Pages restricts conversion to an explicit list of 1-based page
	// numbers. Takes precedence over Range when set.
	Pages []int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 2,
		OCRTimeout:  30 * time.Second,
		Classify:    classify.DefaultConfig(),
		Reconstruct: reconstruct.DefaultConfig(),
		Export:      export.DefaultOptions(),
	}
}

// Spec describes one conversion: a source PDF, a target format, and
// where to write the artifact.
type Spec struct {
	Source   string
	Output   string
	Format   export.Format
	Password string
}

// Job is one conversion owned by a Run.
type Job struct {
	ID     string
	Source string
	Output string
	Format export.Format

	password string

	mu         sync.Mutex
	status     Status
	err        error
	advisories []model.Advisory
}

// Status returns the job's current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Err returns the job's failure cause, if any.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Advisories returns the non-fatal conditions recorded for the job.
func (j *Job) Advisories() []model.Advisory {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]model.Advisory, len(j.advisories))
	copy(out, j.advisories)
	return out
}

// setStatus advances the job state. Backward transitions are ignored,
// keeping the lifecycle monotonic even under races.
func (j *Job) setStatus(s Status) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return
	}
	if s > j.status || s.Terminal() {
		j.status = s
	}
}

func (j *Job) fail(err error) {
	j.mu.Lock()
	if !j.status.Terminal() {
		j.status = StatusFailed
		j.err = err
	}
	j.mu.Unlock()
}

func (j *Job) record(advisories ...model.Advisory) {
	j.mu.Lock()
	j.advisories = append(j.advisories, advisories...)
	j.mu.Unlock()
}

// Run is one submitted batch.
type Run struct {
	jobs   []*Job
	cfg    Config
	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
	sem    chan struct{}
}

// withDefaults fills zero fields from DefaultConfig.
func withDefaults(cfg Config) Config {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = DefaultConfig().OCRTimeout
	}
	if cfg.Engine == nil {
		cfg.Engine = ocr.NewTesseract()
	}
	return cfg
}

// Submit starts converting the given specs and returns immediately.
// The caller must drain Events until it closes.
func Submit(ctx context.Context, specs []Spec, cfg Config) *Run {
	cfg = withDefaults(cfg)

	ctx, cancel := context.WithCancel(ctx)
	r := &Run{
		cfg:    cfg,
		events: make(chan Event, 16),
		cancel: cancel,
		done:   make(chan struct{}),
		sem:    make(chan struct{}, cfg.Concurrency),
	}
	for _, spec := range specs {
		r.jobs = append(r.jobs, &Job{
			ID:       uuid.NewString(),
			Source:   spec.Source,
			Output:   spec.Output,
			Format:   spec.Format,
			password: spec.Password,
		})
	}

	queue := make(chan *Job)
	workers := cfg.Concurrency
	if workers > len(r.jobs) {
		workers = len(r.jobs)
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				r.process(ctx, job)
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, job := range r.jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		cancel()
		close(r.events)
		close(r.done)
	}()
	return r
}

// Jobs returns the run's jobs in submission order.
func (r *Run) Jobs() []*Job { return r.jobs }

// Events returns the event stream. It closes when every started job
// has reached a terminal state.
func (r *Run) Events() <-chan Event { return r.events }

// Cancel stops the run cooperatively: in-flight pages complete, no new
// pages or jobs start. Finished jobs keep their state.
func (r *Run) Cancel() { r.cancel() }

// Wait blocks until the run has fully stopped.
func (r *Run) Wait() { <-r.done }

func (r *Run) emit(e Event) {
	r.events <- e
}

// pageResult carries one reconstructed page back to the assembly step.
type pageResult struct {
	page       *model.Page
	advisories []model.Advisory
	err        error
}

func (r *Run) process(ctx context.Context, job *Job) {
	job.setStatus(StatusRunning)
	r.emit(Progress{Job: job.ID, PagesTotal: -1, Stage: StageLoad})

	reader, err := openReader(job)
	if err != nil {
		job.fail(err)
		r.emit(Terminal{Job: job.ID, Status: StatusFailed, Err: err})
		return
	}
	defer reader.Close()

	indexes, err := selectPages(r.cfg, reader.PageCount())
	if err != nil {
		job.fail(err)
		r.emit(Terminal{Job: job.ID, Status: StatusFailed, Err: err})
		return
	}

	total := len(indexes)
	results := make([]pageResult, total)
	var (
		wg        sync.WaitGroup
		doneMu    sync.Mutex
		pagesDone int
		cancelled bool
	)

	for si, pageIndex := range indexes {
		select {
		case r.sem <- struct{}{}:
			// A cancel that raced the slot acquisition still stops the
			// job at this page boundary.
			if ctx.Err() != nil {
				<-r.sem
				cancelled = true
			}
		case <-ctx.Done():
			cancelled = true
		}
		if cancelled {
			break
		}
		wg.Add(1)
		go func(si, pageIndex int) {
			defer func() {
				<-r.sem
				wg.Done()
			}()
			res := r.processPage(ctx, reader, pageIndex)
			results[si] = res

			doneMu.Lock()
			pagesDone++
			done := pagesDone
			doneMu.Unlock()
			// A page that errored never got past being read.
			stage := StageReconstruct
			if res.err != nil {
				stage = StageLoad
			}
			r.emit(Progress{Job: job.ID, PagesDone: done, PagesTotal: total, Stage: stage})
		}(si, pageIndex)
	}
	wg.Wait()

	if cancelled {
		err := ctx.Err()
		job.fail(err)
		r.emit(Terminal{Job: job.ID, Status: StatusFailed, Err: err, Advisories: job.Advisories()})
		return
	}

	doc := model.NewDocument()
	doc.Metadata = reader.Metadata()
	degraded := false
	for si, res := range results {
		if res.err != nil {
			degraded = true
			job.record(model.Advisory{
				Code:   model.AdvisoryPageError,
				Page:   indexes[si],
				Detail: res.err.Error(),
			})
			continue
		}
		job.record(res.advisories...)
		for _, a := range res.advisories {
			if a.Degrading() {
				degraded = true
			}
		}
		doc.AddPage(res.page)
	}

	r.emit(Progress{Job: job.ID, PagesDone: total, PagesTotal: total, Stage: StageExport})
	exportAdvisories, err := export.ToFile(doc, job.Output, job.Format, r.cfg.Export)
	if err != nil {
		err = fmt.Errorf("writing artifact: %w", err)
		job.fail(err)
		r.emit(Terminal{Job: job.ID, Status: StatusFailed, Err: err, Advisories: job.Advisories()})
		return
	}
	job.record(exportAdvisories...)
	for _, a := range exportAdvisories {
		if a.Degrading() {
			degraded = true
		}
	}

	status := StatusSucceeded
	if degraded {
		status = StatusPartial
	}
	job.setStatus(status)
	r.emit(Terminal{
		Job:        job.ID,
		Status:     status,
		Artifact:   job.Output,
		Advisories: job.Advisories(),
	})
}

// Document converts one source into a reconstructed document without
// writing an artifact. Pages run in parallel under the configured
// concurrency bound, and failed pages degrade to advisories rather
// than failing the whole document.
func Document(ctx context.Context, source, password string, cfg Config) (*model.Document, []model.Advisory, error) {
	cfg = withDefaults(cfg)
	r := &Run{cfg: cfg, sem: make(chan struct{}, cfg.Concurrency)}

	reader, err := openReader(&Job{Source: source, password: password})
	if err != nil {
		return nil, nil, err
	}
	defer reader.Close()

	indexes, err := selectPages(cfg, reader.PageCount())
	if err != nil {
		return nil, nil, err
	}

	results := make([]pageResult, len(indexes))
	var (
		wg        sync.WaitGroup
		cancelled bool
	)
	for si, pageIndex := range indexes {
		select {
		case r.sem <- struct{}{}:
			if ctx.Err() != nil {
				<-r.sem
				cancelled = true
			}
		case <-ctx.Done():
			cancelled = true
		}
		if cancelled {
			break
		}
		wg.Add(1)
		go func(si, pageIndex int) {
			defer func() {
				<-r.sem
				wg.Done()
			}()
			results[si] = r.processPage(ctx, reader, pageIndex)
		}(si, pageIndex)
	}
	// In-flight pages still use the reader; only return, and with it
	// close the reader, once they drain.
	wg.Wait()
	if cancelled || ctx.Err() != nil {
		return nil, nil, ctx.Err()
	}

	doc := model.NewDocument()
	doc.Metadata = reader.Metadata()
	var advisories []model.Advisory
	for si, res := range results {
		if res.err != nil {
			advisories = append(advisories, model.Advisory{
				Code:   model.AdvisoryPageError,
				Page:   indexes[si],
				Detail: res.err.Error(),
			})
			continue
		}
		advisories = append(advisories, res.advisories...)
		doc.AddPage(res.page)
	}
	return doc, advisories, nil
}

// processPage runs one page through extraction, classification,
// recognition, and reconstruction. The caller holds a concurrency
// slot, so OCR calls made here stay within the run-wide bound.
func (r *Run) processPage(ctx context.Context, reader *pdfread.Reader, pageIndex int) pageResult {
	pc, err := reader.Page(pageIndex)
	if err != nil {
		return pageResult{err: err}
	}

	class := classify.Classify(pc, r.cfg.Classify)

	var rec *ocr.Result
	var advisories []model.Advisory
	if pc.ParseError != "" {
		advisories = append(advisories, model.Advisory{
			Code:   model.AdvisoryPageError,
			Page:   pageIndex,
			Detail: "text layer unreadable: " + pc.ParseError,
		})
	}
	if class != model.ClassText && pc.Raster != nil {
		result, err := r.recognize(ctx, pc.Raster, pageIndex)
		if err != nil {
			advisories = append(advisories, ocrAdvisory(err, pageIndex))
		} else {
			rec = &result
		}
	}

	rc := reconstruct.New(r.cfg.Reconstruct, r.recognize)
	page, recAdvisories := rc.Page(ctx, pc, class, rec)
	advisories = append(advisories, recAdvisories...)
	return pageResult{page: page, advisories: advisories}
}

// recognize runs one OCR call under the configured timeout. It is the
// reconstruct.RecognizeFunc for the corrective fallback path.
func (r *Run) recognize(ctx context.Context, raster *model.Raster, pageIndex int) (ocr.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.OCRTimeout)
	defer cancel()

	opts := []ocr.InputOption{ocr.WithLanguages(r.cfg.Languages...)}
	if r.cfg.Preprocess {
		opts = append(opts, ocr.WithPreprocess())
	}
	return r.cfg.Engine.Recognize(ctx, ocr.NewInput(raster, pageIndex, opts...))
}

// ocrAdvisory maps a recognition failure to its advisory code.
func ocrAdvisory(err error, pageIndex int) model.Advisory {
	code := model.AdvisoryOCRUnavailable
	if errors.Is(err, ocr.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		code = model.AdvisoryOCRTimeout
	}
	return model.Advisory{Code: code, Page: pageIndex, Detail: err.Error()}
}

func openReader(job *Job) (*pdfread.Reader, error) {
	if job.password != "" {
		return pdfread.OpenWithPassword(job.Source, job.password)
	}
	return pdfread.Open(job.Source)
}

// selectPages resolves the configured page selection to zero-based
// indexes in source order.
func selectPages(cfg Config, pageCount int) ([]int, error) {
	if len(cfg.Pages) > 0 {
		out := make([]int, 0, len(cfg.Pages))
		for _, p := range cfg.Pages {
			if p < 1 || p > pageCount {
				return nil, fmt.Errorf("page %d out of range 1..%d", p, pageCount)
			}
			out = append(out, p-1)
		}
		return out, nil
	}

	start, end := cfg.Range.Start, cfg.Range.End
	if start == 0 && end == 0 {
		start, end = 1, pageCount
	}
	if start < 1 {
		start = 1
	}
	if end == 0 || end > pageCount {
		end = pageCount
	}
	if start > end {
		return nil, fmt.Errorf("empty page range %d..%d", cfg.Range.Start, cfg.Range.End)
	}
	out := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		out = append(out, p-1)
	}
	return out, nil
}
