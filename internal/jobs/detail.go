package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"jobdesk/internal/logging"
)

// OverrideDialog is the status picker state.
type OverrideDialog struct {
	Open      bool
	Selection Status
	Saving    bool
	Err       error
}

// DetailState is a snapshot of the detail panel.
type DetailState struct {
	Open     bool
	Loading  bool
	Job      *Detail
	Err      error
	Notice   string
	Dialog   OverrideDialog
	Sending  bool
	SendErr  error
	LoadedID int64
}

// DetailController fetches job detail and enacts overrides and deliveries.
type DetailController struct {
	backend   Backend
	refresher Refresher
	logger    *slog.Logger

	mu         sync.Mutex
	state      DetailState
	overriding map[int64]struct{}
	sending    bool
}

// NewDetailController builds a controller. refresher may be nil.
func NewDetailController(backend Backend, refresher Refresher, logger *slog.Logger) *DetailController {
	return &DetailController{
		backend:    backend,
		refresher:  refresher,
		logger:     logging.NewComponentLogger(logger, "jobs"),
		overriding: make(map[int64]struct{}),
	}
}

// State returns a snapshot of the panel.
func (c *DetailController) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.state
	if c.state.Job != nil {
		job := *c.state.Job
		state.Job = &job
	}
	return state
}

// Open fetches id and shows it. On failure the panel is closed and the error
// kept in State().Err.
func (c *DetailController) Open(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.state = DetailState{Open: true, Loading: true, LoadedID: id}
	c.mu.Unlock()

	detail, err := c.backend.GetJob(logging.WithJobID(ctx, id), id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.LoadedID != id {
		return err
	}
	c.state.Loading = false
	if err != nil {
		c.state = DetailState{Err: err}
		c.logger.Warn("job detail failed", logging.Int64(logging.FieldJobID, id), logging.Error(err))
		return err
	}
	c.state.Job = &detail
	return nil
}

// Close hides the panel and any dialog.
func (c *DetailController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = DetailState{}
}

// BeginOverride opens the status picker preselected to the job's status.
func (c *DetailController) BeginOverride() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Job == nil {
		return ErrNoDetail
	}
	selection := c.state.Job.Status
	if !selection.Known() {
		selection = ""
	}
	c.state.Dialog = OverrideDialog{Open: true, Selection: selection}
	return nil
}

// Select changes the picker selection.
func (c *DetailController) Select(status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Dialog.Selection = status
}

// CancelOverride closes the picker without changes.
func (c *DetailController) CancelOverride() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Dialog = OverrideDialog{}
}

// ConfirmOverride submits the picker selection for the open job. On success
// the dialog closes, the listing is refreshed, and the detail is re-fetched.
// On failure the dialog stays open with its selection and error. While an
// update for the job is pending a second confirm returns ErrOverrideInFlight
// and leaves the dialog untouched.
func (c *DetailController) ConfirmOverride(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Job == nil {
		c.mu.Unlock()
		return ErrNoDetail
	}
	id := c.state.Job.ID
	selection := c.state.Dialog.Selection
	if !selection.Known() {
		err := fmt.Errorf("%w: %q", ErrInvalidStatus, selection)
		c.state.Dialog.Err = err
		c.mu.Unlock()
		return err
	}
	if _, busy := c.overriding[id]; busy || c.state.Dialog.Saving {
		c.mu.Unlock()
		return ErrOverrideInFlight
	}
	c.overriding[id] = struct{}{}
	c.state.Dialog.Saving = true
	c.state.Dialog.Err = nil
	c.mu.Unlock()

	message, err := c.applyStatus(ctx, id, selection)
	c.release(id)

	c.mu.Lock()
	if c.state.Job == nil || c.state.Job.ID != id {
		c.mu.Unlock()
		return err
	}
	if err != nil {
		c.state.Dialog.Saving = false
		c.state.Dialog.Err = err
		c.mu.Unlock()
		return err
	}
	c.state.Dialog = OverrideDialog{}
	c.state.Notice = message
	c.mu.Unlock()

	if refetched, ferr := c.backend.GetJob(logging.WithJobID(ctx, id), id); ferr == nil {
		c.mu.Lock()
		if c.state.Job != nil && c.state.Job.ID == id {
			c.state.Job = &refetched
		}
		c.mu.Unlock()
	}
	return nil
}

// UpdateStatus overrides id's status. Only one override per job may be in
// flight; the listing is refreshed after success.
func (c *DetailController) UpdateStatus(ctx context.Context, id int64, status Status) (string, error) {
	if !status.Known() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	c.mu.Lock()
	if _, busy := c.overriding[id]; busy {
		c.mu.Unlock()
		return "", ErrOverrideInFlight
	}
	c.overriding[id] = struct{}{}
	c.mu.Unlock()
	defer c.release(id)

	return c.applyStatus(ctx, id, status)
}

func (c *DetailController) release(id int64) {
	c.mu.Lock()
	delete(c.overriding, id)
	c.mu.Unlock()
}

// applyStatus sends the override. The caller holds the job's in-flight slot.
func (c *DetailController) applyStatus(ctx context.Context, id int64, status Status) (string, error) {
	ctx = logging.WithJobID(ctx, id)
	message, err := c.backend.UpdateStatus(ctx, id, status)
	if err != nil {
		logging.WithContext(ctx, c.logger).Warn("status override failed",
			logging.String("status", string(status)),
			logging.Error(err),
		)
		return "", err
	}
	logging.WithContext(ctx, c.logger).Info("status overridden", logging.String("status", string(status)))
	c.refresh(ctx)
	return message, nil
}

// SendVideo delivers the open job's final video after confirm approves it.
// On success the panel's status becomes sent without a re-fetch.
func (c *DetailController) SendVideo(ctx context.Context, confirm func(Detail) bool) (string, error) {
	c.mu.Lock()
	if c.state.Job == nil {
		c.mu.Unlock()
		return "", ErrNoDetail
	}
	job := *c.state.Job
	c.mu.Unlock()

	message, err := c.Deliver(ctx, job, confirm)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Job == nil || c.state.Job.ID != job.ID {
		return message, err
	}
	c.state.SendErr = err
	if err == nil {
		c.state.Job.Status = StatusSent
		c.state.Notice = message
	}
	return message, err
}

// Deliver triggers delivery of job. It refuses ineligible jobs and declined
// confirmations without contacting the backend, and allows one delivery at a
// time.
func (c *DetailController) Deliver(ctx context.Context, job Detail, confirm func(Detail) bool) (string, error) {
	if !job.CanSendVideo() {
		return "", ErrDeliveryUnavailable
	}
	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return "", ErrDeliveryInFlight
	}
	c.sending = true
	c.state.Sending = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.sending = false
		c.state.Sending = false
		c.mu.Unlock()
	}()

	if confirm != nil && !confirm(job) {
		return "", ErrDeliveryDeclined
	}

	ctx = logging.WithJobID(ctx, job.ID)
	message, err := c.backend.SendVideo(ctx, job.ID)
	if err != nil {
		logging.WithContext(ctx, c.logger).Warn("send video failed", logging.Error(err))
		return "", err
	}
	logging.WithContext(ctx, c.logger).Info("video sent")
	c.refresh(ctx)
	return message, nil
}

func (c *DetailController) refresh(ctx context.Context) {
	if c.refresher == nil {
		return
	}
	if err := c.refresher.Refresh(ctx); err != nil {
		c.logger.Debug("listing refresh after mutation failed", logging.Error(err))
	}
}
