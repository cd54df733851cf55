package jobs

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status represents where a job sits in the video pipeline.
type Status string

const (
	StatusWait              Status = "wait"
	StatusQueued            Status = "queued"
	StatusPhotoProcessing   Status = "photo_processing"
	StatusPhotoDone         Status = "photo_done"
	StatusLipsyncProcessing Status = "lipsync_processing"
	StatusLipsyncDone       Status = "lipsync_done"
	StatusStitching         Status = "stitching"
	StatusUploaded          Status = "uploaded"
	StatusSent              Status = "sent"
	StatusFailed            Status = "failed"

	// StatusUnknown stands in for values the backend sends that this client
	// does not recognise. It is never sent back to the backend.
	StatusUnknown Status = "unknown"
)

// allStatuses lists the settable statuses in pipeline order.
var allStatuses = []Status{
	StatusWait,
	StatusQueued,
	StatusPhotoProcessing,
	StatusPhotoDone,
	StatusLipsyncProcessing,
	StatusLipsyncDone,
	StatusStitching,
	StatusUploaded,
	StatusSent,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns every settable status in pipeline order.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// StatusFromWire maps a backend value onto the closed set. Empty input stays
// empty (no status recorded); anything unrecognised becomes StatusUnknown.
func StatusFromWire(value string) Status {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	if status, ok := ParseStatus(value); ok {
		return status
	}
	return StatusUnknown
}

// Known reports whether s is one of the settable statuses.
func (s Status) Known() bool {
	_, ok := statusSet[s]
	return ok
}

// IsTerminal reports whether the pipeline is finished with the job.
func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

var titleCaser = cases.Title(language.English)

// Label renders s for people, e.g. "Photo Processing".
func (s Status) Label() string {
	if s == "" {
		return "N/A"
	}
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}

// Tone is the colour family a status badge is drawn in.
type Tone string

const (
	ToneOrange Tone = "orange"
	ToneBlue   Tone = "blue"
	ToneYellow Tone = "yellow"
	ToneGreen  Tone = "green"
	TonePurple Tone = "purple"
	ToneRed    Tone = "red"
	ToneGray   Tone = "gray"
)

// Tone returns the badge colour family for s.
func (s Status) Tone() Tone {
	switch s {
	case StatusWait:
		return ToneOrange
	case StatusQueued:
		return ToneBlue
	case StatusPhotoProcessing, StatusLipsyncProcessing:
		return ToneYellow
	case StatusPhotoDone, StatusLipsyncDone, StatusUploaded, StatusSent:
		return ToneGreen
	case StatusStitching:
		return TonePurple
	case StatusFailed:
		return ToneRed
	default:
		return ToneGray
	}
}

// FailedStage names the pipeline step a job failed in.
type FailedStage string

const (
	StagePhoto    FailedStage = "photo"
	StageLipsync  FailedStage = "lipsync"
	StageStitch   FailedStage = "stitch"
	StageDelivery FailedStage = "delivery"
)

var allFailedStages = []FailedStage{StagePhoto, StageLipsync, StageStitch, StageDelivery}

// AllFailedStages returns every failure stage in pipeline order.
func AllFailedStages() []FailedStage {
	cp := make([]FailedStage, len(allFailedStages))
	copy(cp, allFailedStages)
	return cp
}

// ParseFailedStage converts a string into a known FailedStage.
func ParseFailedStage(value string) (FailedStage, bool) {
	normalized := FailedStage(strings.ToLower(strings.TrimSpace(value)))
	for _, stage := range allFailedStages {
		if stage == normalized {
			return stage, true
		}
	}
	return "", false
}

// FailedStageFromWire maps a backend value onto a known stage. Values outside
// the known set are kept verbatim so they can still be shown.
func FailedStageFromWire(value string) FailedStage {
	if stage, ok := ParseFailedStage(value); ok {
		return stage
	}
	return FailedStage(strings.TrimSpace(value))
}
