package jobs

import (
	"context"
	"errors"
)

// Lister fetches a page of jobs.
type Lister interface {
	ListJobs(ctx context.Context, q Query) (Page, error)
}

// Fetcher fetches a single job's detail.
type Fetcher interface {
	GetJob(ctx context.Context, id int64) (Detail, error)
}

// Updater applies an admin status override and returns the backend message.
type Updater interface {
	UpdateStatus(ctx context.Context, id int64, status Status) (string, error)
}

// Sender triggers manual delivery of a job's final video.
type Sender interface {
	SendVideo(ctx context.Context, id int64) (string, error)
}

// Backend is everything the job controllers need from the remote API.
type Backend interface {
	Lister
	Fetcher
	Updater
	Sender
}

// Refresher reloads the listing after a mutation.
type Refresher interface {
	Refresh(ctx context.Context) error
}

var (
	// ErrInvalidStatus reports an override target outside the settable set.
	ErrInvalidStatus = errors.New("status must be one of the pipeline statuses")
	// ErrOverrideInFlight reports a second override for a job whose first
	// override has not finished.
	ErrOverrideInFlight = errors.New("a status update for this job is already in progress")
	// ErrDeliveryInFlight reports a send-video request while one is running.
	ErrDeliveryInFlight = errors.New("a send-video request is already in progress")
	// ErrDeliveryUnavailable reports a job with no final video or one already sent.
	ErrDeliveryUnavailable = errors.New("send video is only available for jobs with a final video that have not been sent")
	// ErrDeliveryDeclined reports that the admin did not confirm delivery.
	ErrDeliveryDeclined = errors.New("send video cancelled")
	// ErrNoDetail reports an action that needs an open job detail.
	ErrNoDetail = errors.New("no job selected")
)

// LoadFailedMessage is shown in place of the listing after a failed load.
const LoadFailedMessage = "Failed to load jobs"
