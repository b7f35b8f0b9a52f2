package build

import (
	"time"

	"git.home.luguber.info/inful/apidoc/internal/metrics"
)

// PageStatus is the outcome of one page.
type PageStatus string

const (
	PageRendered PageStatus = "rendered"
	PageSkipped  PageStatus = "skipped"
	PageFailed   PageStatus = "failed"
)

func (s PageStatus) label() metrics.ResultLabel {
	switch s {
	case PageRendered:
		return metrics.ResultRendered
	case PageSkipped:
		return metrics.ResultSkipped
	default:
		return metrics.ResultFailed
	}
}

// PageResult describes what happened to one source.
type PageResult struct {
	Name     string
	Source   string
	Output   string
	Status   PageStatus
	Err      error
	Duration time.Duration
}

// Report summarizes a build. Pages are in source order.
type Report struct {
	BuildID  string
	Pages    []PageResult
	Rendered int
	Skipped  int
	Failed   int
	Duration time.Duration
}

func (r *Report) count() {
	r.Rendered, r.Skipped, r.Failed = 0, 0, 0
	for _, p := range r.Pages {
		switch p.Status {
		case PageRendered:
			r.Rendered++
		case PageSkipped:
			r.Skipped++
		case PageFailed:
			r.Failed++
		}
	}
}

// FailedPages returns the names of the pages that failed.
func (r *Report) FailedPages() []string {
	var out []string
	for _, p := range r.Pages {
		if p.Status == PageFailed {
			out = append(out, p.Name)
		}
	}
	return out
}

func (r *Report) outcome() metrics.BuildOutcomeLabel {
	switch {
	case r.Failed == 0:
		return metrics.BuildSuccess
	case r.Failed == len(r.Pages):
		return metrics.BuildFailed
	default:
		return metrics.BuildPartial
	}
}
