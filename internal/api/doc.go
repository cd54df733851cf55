// Package api defines the wire-format types exchanged with the video-job
// backend and the converters between them and the jobs/reports domain types.
//
// # Key Types
//
// VideoJob / VideoJobDetail: listing and detail records. Nullable backend
// columns are pointers so null and empty stay distinguishable.
//
// JobListResponse, MessageResponse, StatsResponse, TrendResponse,
// TrafficSourcesResponse: endpoint envelopes.
//
// # Converters
//
// ToJob/ToDetail/ToPage and ToStats/ToTrend/ToTraffic map wire values onto
// domain types; FromJob/FromDetail go the other way for servers and tests.
//
// # Design Notes
//
// DTOs use the backend's snake_case JSON keys. Timestamps arrive either as
// RFC3339 or as naive ISO datetimes (assumed UTC) and are parsed by
// ParseTimestamp. Unknown status strings map to jobs.StatusUnknown rather than
// failing the whole page.
package api
