// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import "strings"

// Role is the self-declared role kept in the identity provider's metadata bag.
type Role string

const (
	RoleNone      Role = ""
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// MetadataRoleKey is the metadata key holding the role.
const MetadataRoleKey = "role"

// ParseRole maps a raw value onto a known role. Unknown values are RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCandidate:
		return RoleCandidate
	case RoleRecruiter:
		return RoleRecruiter
	default:
		return RoleNone
	}
}

// Valid reports whether r is candidate or recruiter.
func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleRecruiter
}

// Landing returns where a user with this role goes after onboarding.
func (r Role) Landing() string {
	if r == RoleRecruiter {
		return "/post-job"
	}
	return "/jobs"
}

func (r Role) String() string { return string(r) }
