// Package jobs models video-generation jobs as the admin sees them and
// implements the listing, detail, status-override, and delivery controllers.
//
// Status is a closed set with an explicit unknown fallback so legacy or new
// backend values still render. The override contract (status replaced, retry
// count incremented, failure markers cleared) is applied by WithOverride so
// the client and test doubles agree on it. Controllers hold view state behind
// a mutex and talk to the backend through the small interfaces in
// controller.go.
package jobs
