// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import "strings"

// User is the signed-in principal as reported by the identity provider.
type User struct {
	ID        string         `json:"id"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	Email     string         `json:"email,omitempty"`
	ImageURL  string         `json:"image_url,omitempty"`
	Metadata  map[string]any `json:"unsafe_metadata,omitempty"`
}

// Role reads the role from the metadata bag.
func (u User) Role() Role {
	if u.Metadata == nil {
		return RoleNone
	}
	s, _ := u.Metadata[MetadataRoleKey].(string)
	return ParseRole(s)
}

// FullName joins first and last name, falling back to the e-mail address.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Caller identifies who a backend call is made for. Token is the bearer
// credential forwarded to the remote data API; the local store ignores it.
type Caller struct {
	UserID string
	Token  string
}
