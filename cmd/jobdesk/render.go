package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"jobdesk/internal/jobs"
	"jobdesk/internal/reports"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiGreen   = "\x1b[32m"
	ansiYellow  = "\x1b[33m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiOrange  = "\x1b[38;5;208m"
	ansiGray    = "\x1b[90m"
)

const (
	statusLabelWidth = 18
	statusIndent     = "  "
	barWidth         = 24
	timestampLayout  = "2006-01-02 15:04:05"
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func toneANSI(tone jobs.Tone) string {
	switch tone {
	case jobs.ToneOrange:
		return ansiOrange
	case jobs.ToneBlue:
		return ansiBlue
	case jobs.ToneYellow:
		return ansiYellow
	case jobs.ToneGreen:
		return ansiGreen
	case jobs.TonePurple:
		return ansiMagenta
	case jobs.ToneRed:
		return ansiRed
	default:
		return ansiGray
	}
}

// statusBadge renders a status label, coloured by its tone on terminals.
func statusBadge(status jobs.Status, colorize bool) string {
	label := status.Label()
	if !colorize {
		return label
	}
	return toneANSI(status.Tone()) + label + ansiReset
}

func bandANSI(band reports.Band) string {
	switch band {
	case reports.BandGreen:
		return ansiGreen
	case reports.BandAmber:
		return ansiYellow
	default:
		return ansiRed
	}
}

func rateBadge(rate float64, colorize bool) string {
	label := reports.FormatRate(rate)
	if !colorize {
		return label
	}
	return bandANSI(reports.ConversionBand(rate)) + label + ansiReset
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "N/A"
	}
	return ts.Local().Format(timestampLayout)
}

// formatAge renders ts relative to now, e.g. "3 hours ago".
func formatAge(ts time.Time) string {
	if ts.IsZero() {
		return "N/A"
	}
	return humanize.Time(ts)
}

func bar(count, largest int) string {
	return strings.Repeat("█", reports.BarWidth(count, largest, barWidth))
}

func orNA(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "N/A"
	}
	return *value
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
