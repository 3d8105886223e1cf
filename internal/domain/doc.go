// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package domain defines the job board entities and the Backend contract that
// both the remote data API client and the local SQLite store implement.
package domain
