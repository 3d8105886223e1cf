// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads and hot-reloads the jobjump daemon settings.
//
// Values resolve as JOBJUMP_* environment variables over a strict YAML file
// over Defaults. The sections cover the HTTP server, the data API backend
// (remote or sqlite), identity, sessions, uploads, rate limits, metrics and
// telemetry. ConfigHolder swaps in a new AppConfig when the file changes or
// on SIGHUP and notifies registered listeners.
package config
