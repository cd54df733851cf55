package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidRange reports a malformed or inverted date range.
var ErrInvalidRange = errors.New("invalid date range")

// DateRange is an inclusive pair of ISO dates. Empty bounds are unbounded.
type DateRange struct {
	Start string
	End   string
}

// Validate checks both bounds parse as YYYY-MM-DD and are ordered.
func (r DateRange) Validate() error {
	var start, end time.Time
	var err error
	if r.Start != "" {
		if start, err = time.Parse(time.DateOnly, r.Start); err != nil {
			return fmt.Errorf("%w: start date must be YYYY-MM-DD, got %q", ErrInvalidRange, r.Start)
		}
	}
	if r.End != "" {
		if end, err = time.Parse(time.DateOnly, r.End); err != nil {
			return fmt.Errorf("%w: end date must be YYYY-MM-DD, got %q", ErrInvalidRange, r.End)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidRange, r.End, r.Start)
	}
	return nil
}

// Normalized trims both bounds.
func (r DateRange) Normalized() DateRange {
	return DateRange{Start: strings.TrimSpace(r.Start), End: strings.TrimSpace(r.End)}
}

// Describe renders the range for headings.
func (r DateRange) Describe() string {
	switch {
	case r.Start != "" && r.End != "":
		return r.Start + " to " + r.End
	case r.Start != "":
		return "from " + r.Start
	case r.End != "":
		return "until " + r.End
	default:
		return "all time"
	}
}

// CSVFilename names the exported report for r.
func (r DateRange) CSVFilename() string {
	name := "video_jobs_report"
	switch {
	case r.Start != "" && r.End != "":
		name += "_" + r.Start + "_to_" + r.End
	case r.Start != "":
		name += "_from_" + r.Start
	case r.End != "":
		name += "_until_" + r.End
	}
	return name + ".csv"
}
