// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import "time"

// Company is a hiring organisation.
type Company struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	LogoURL   string    `json:"logo_url" db:"logo_url"`
	CreatedAt time.Time `json:"created_at,omitzero" db:"created_at"`
}

// NewCompany is the payload for AddCompany.
type NewCompany struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
}
