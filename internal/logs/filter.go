package logs

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"jobdesk/internal/logging"
)

// Filter narrows entries to one job, one backend request, or a minimum
// level. Zero fields match everything.
type Filter struct {
	JobID     int64
	RequestID string
	MinLevel  string
}

// Empty reports whether the filter matches every entry.
func (f Filter) Empty() bool {
	return f.JobID == 0 && strings.TrimSpace(f.RequestID) == "" && levelRank(f.MinLevel) == 0
}

// Match reports whether e satisfies every set criterion.
func (f Filter) Match(e Entry) bool {
	if f.Empty() {
		return true
	}
	rec := parseRecord(e)
	if f.JobID != 0 && rec.jobID != strconv.FormatInt(f.JobID, 10) {
		return false
	}
	if id := strings.TrimSpace(f.RequestID); id != "" && rec.requestID != id {
		return false
	}
	return levelRank(rec.level) >= levelRank(f.MinLevel)
}

type record struct {
	level     string
	jobID     string
	requestID string
}

// parseRecord extracts the filterable fields from a JSON line or a console
// header with its "    - key: value" field lines.
func parseRecord(e Entry) record {
	header := e.header()
	if strings.HasPrefix(strings.TrimSpace(header), "{") && gjson.Valid(header) {
		parsed := gjson.Parse(header)
		return record{
			level:     parsed.Get("level").String(),
			jobID:     parsed.Get(logging.FieldJobID).String(),
			requestID: parsed.Get(logging.FieldRequestID).String(),
		}
	}

	var rec record
	for _, token := range strings.Fields(header) {
		if rec.level == "" && levelRank(token) > 0 {
			rec.level = token
		}
	}
	if idx := strings.Index(header, " Job #"); idx >= 0 {
		rest := header[idx+len(" Job #"):]
		if end := strings.IndexByte(rest, ' '); end >= 0 {
			rest = rest[:end]
		}
		rec.jobID = rest
	}
	for _, line := range e.Lines[1:] {
		key, value, ok := strings.Cut(strings.TrimPrefix(strings.TrimSpace(line), "- "), ": ")
		if !ok {
			continue
		}
		switch key {
		case logging.FieldRequestID:
			rec.requestID = strings.TrimSpace(value)
		case logging.FieldJobID:
			if rec.jobID == "" {
				rec.jobID = strings.TrimSpace(value)
			}
		}
	}
	return rec
}

// levelRank orders levels; unknown or empty levels rank zero.
func levelRank(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return 1
	case "info":
		return 2
	case "warn", "warning":
		return 3
	case "error":
		return 4
	default:
		return 0
	}
}
