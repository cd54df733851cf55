package jobs

import (
	"strings"
	"time"
)

// Job is the list projection of a video job. Nil pointers mean the backend
// sent null.
type Job struct {
	ID                 int64
	UserID             string
	MobileNumber       *string
	Gender             *string
	AttributeLove      *string
	RelationshipStatus *string
	Vibe               *string
	Status             Status
	RetryCount         *int
	FailedStage        FailedStage
	LastErrorCode      *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Retries returns the retry count, treating null as zero.
func (j Job) Retries() int {
	if j.RetryCount == nil {
		return 0
	}
	return *j.RetryCount
}

// WithOverride returns j as it looks after an admin status override: the
// status replaced, the retry count incremented, and failure markers cleared.
func (j Job) WithOverride(status Status) Job {
	retries := j.Retries() + 1
	j.Status = status
	j.RetryCount = &retries
	j.FailedStage = ""
	j.LastErrorCode = nil
	return j
}

// Detail is the full record of a single job.
type Detail struct {
	Job
	RawSelfieURL       *string
	NormalizedImageURL *string
	LipsyncSeg2URL     *string
	LipsyncSeg4URL     *string
	FinalVideoURL      *string
	TermsAccepted      *bool
	VideoCount         *int
	LockedBy           *string
	LockedAt           *time.Time
}

// HasFinalVideo reports whether the stitched video has been published.
func (d Detail) HasFinalVideo() bool {
	return d.FinalVideoURL != nil && strings.TrimSpace(*d.FinalVideoURL) != ""
}

// CanSendVideo reports whether manual delivery may be offered.
func (d Detail) CanSendVideo() bool {
	return d.HasFinalVideo() && d.Status != StatusSent
}

// Locked reports whether a pipeline worker holds the job.
func (d Detail) Locked() bool {
	return d.LockedBy != nil && *d.LockedBy != ""
}

// Page is one page of listing results.
type Page struct {
	Items      []Job
	Total      int
	TotalPages int
	Message    string
}
