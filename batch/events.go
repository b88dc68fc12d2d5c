package batch

import "github.com/pdfmill/pdfmill/model"

// Stage identifies the pipeline stage a progress event refers to.
type Stage int

const (
	// StageLoad covers opening the source document.
	StageLoad Stage = iota
	// StageClassify covers page content extraction and classification.
	StageClassify
	// StageOCR covers recognition of scanned pages.
	StageOCR
	// StageReconstruct covers layout reconstruction.
	StageReconstruct
	// StageExport covers rendering and writing the artifact.
	StageExport
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "load"
	case StageClassify:
		return "classify"
	case StageOCR:
		return "ocr"
	case StageReconstruct:
		return "reconstruct"
	case StageExport:
		return "export"
	default:
		return "unknown"
	}
}

// Status is a job lifecycle state. Transitions are monotonic: a job
// moves forward through Pending, Running, and exactly one terminal
// state, never backward.
type Status int

const (
	// StatusPending marks a job that has not started. A job still
	// pending when its run is cancelled keeps this status.
	StatusPending Status = iota
	// StatusRunning marks a job being processed.
	StatusRunning
	// StatusSucceeded marks a job whose artifact was written with no
	// degraded content.
	StatusSucceeded
	// StatusFailed marks a job that produced no artifact.
	StatusFailed
	// StatusPartial marks a job whose artifact was written but with
	// some pages or features degraded.
	StatusPartial
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusRunning:
		return "RUNNING"
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	case StatusPartial:
		return "PARTIAL"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusPartial
}

// Event is either a Progress or a Terminal notification. Consumers
// switch on the concrete type.
type Event interface {
	JobID() string
}

// Progress is emitted after each page completes a stage.
type Progress struct {
	Job        string
	PagesDone  int
	PagesTotal int
	Stage      Stage
}

func (p Progress) JobID() string { return p.Job }

// Terminal is emitted once per started job when it reaches an end
// state; it carries either an artifact path or an error, plus any
// advisories recorded along the way.
type Terminal struct {
	Job        string
	Status     Status
	Artifact   string
	Err        error
	Advisories []model.Advisory
}

func (t Terminal) JobID() string { return t.Job }
