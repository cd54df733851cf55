// Package config loads, normalizes, and validates jobdesk configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), overlays a working-directory .env file, reads TOML files, and
// honours environment fallbacks such as JOBDESK_API_URL. The Config type
// centralizes every knob the CLI and dashboard need so the backend client,
// session store, and report exporter are all configured in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
