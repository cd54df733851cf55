package backend

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"jobdesk/internal/session"
)

// ErrUnauthorized reports that the backend rejected the admin token.
var ErrUnauthorized = errors.New("session expired; run 'jobdesk login'")

// RequestError is a non-authorization failure response from the backend.
type RequestError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *RequestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
}

// NotFound reports a 404 response.
func (e *RequestError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsAuthFailure reports whether err means the admin must log in again.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, session.ErrNoSession)
}

const maxDetailLength = 300

// errorDetail pulls a human-readable reason out of an error body. The backend
// sends {"detail": "..."}, validation failures send {"detail": [{"msg": ...}]},
// and some routes use {"message": "..."}.
func errorDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		return truncate(strings.TrimSpace(string(body)))
	}
	root := gjson.ParseBytes(body)
	detail := root.Get("detail")
	switch {
	case detail.Type == gjson.String:
		return truncate(detail.String())
	case detail.IsArray():
		var msgs []string
		for _, m := range detail.Get("#.msg").Array() {
			if s := strings.TrimSpace(m.String()); s != "" {
				msgs = append(msgs, s)
			}
		}
		if len(msgs) > 0 {
			return truncate(strings.Join(msgs, "; "))
		}
	}
	if msg := root.Get("message"); msg.Type == gjson.String {
		return truncate(msg.String())
	}
	if msg := root.Get("error"); msg.Type == gjson.String {
		return truncate(msg.String())
	}
	return ""
}

// messageField returns the "message" of a success envelope.
func messageField(body []byte) string {
	return strings.TrimSpace(gjson.GetBytes(body, "message").String())
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxDetailLength {
		return s
	}
	return s[:maxDetailLength] + "…"
}
