// Package session owns the persisted admin token and the guard that every
// protected backend call consults.
//
// The guard is presence-based: a token on disk means the admin may try
// protected requests, and the backend decides whether it is still valid.
// When the backend rejects it (401/403) the guard discards the token and
// refuses every later protected call until the admin logs in again.
package session
