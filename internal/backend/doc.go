// Package backend is the HTTP client for the video-job admin API.
//
// Every call obtains the admin token from a TokenSource (the session guard),
// sends it as a bearer credential with a fresh X-Request-ID, and classifies
// the response: 401/403 revoke the session and surface ErrUnauthorized, other
// non-2xx statuses become *RequestError carrying the backend's detail text.
// No request is issued when the guard has no token.
package backend
