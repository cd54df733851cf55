package jobs

import (
	"context"
	"errors"
	"sync"
)

type fakeBackend struct {
	mu        sync.Mutex
	jobs      map[int64]Detail
	listErr   error
	getErr    error
	updateErr error
	sendErr   error
	block     chan struct{}
	entered   chan struct{}

	listCalls   int
	updateCalls int
	sendCalls   int
	lastQuery   Query
}

func newFakeBackend(details ...Detail) *fakeBackend {
	f := &fakeBackend{jobs: make(map[int64]Detail)}
	for _, d := range details {
		f.jobs[d.ID] = d
	}
	return f
}

func (f *fakeBackend) ListJobs(_ context.Context, q Query) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	f.lastQuery = q
	if f.listErr != nil {
		return Page{}, f.listErr
	}
	page := Page{Total: len(f.jobs), TotalPages: 5, Message: "ok"}
	for _, d := range f.jobs {
		page.Items = append(page.Items, d.Job)
	}
	return page, nil
}

func (f *fakeBackend) GetJob(_ context.Context, id int64) (Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return Detail{}, f.getErr
	}
	d, ok := f.jobs[id]
	if !ok {
		return Detail{}, errors.New("not found")
	}
	return d, nil
}

func (f *fakeBackend) UpdateStatus(_ context.Context, id int64, status Status) (string, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return "", f.updateErr
	}
	d := f.jobs[id]
	d.Job = d.Job.WithOverride(status)
	f.jobs[id] = d
	return "Job status updated", nil
}

func (f *fakeBackend) SendVideo(_ context.Context, id int64) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return "Video sent", nil
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
