// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package authz decides which pages and API operations a visitor may reach.
// Gating here is presentation logic; the data API remains the real
// authorization boundary.
package authz

import "github.com/ManuGH/jobjump/internal/domain"

// Gate is the requirement a route places on the visitor.
type Gate int

const (
	// GatePublic admits everyone.
	GatePublic Gate = iota
	// GateOnboarding admits signed-in users without a role.
	GateOnboarding
	// GateRole admits signed-in users with a role.
	GateRole
	// GateRecruiter admits signed-in recruiters.
	GateRecruiter
)

func (g Gate) String() string {
	switch g {
	case GatePublic:
		return "public"
	case GateOnboarding:
		return "onboarding"
	case GateRole:
		return "role"
	case GateRecruiter:
		return "recruiter"
	default:
		return "unknown"
	}
}

// Redirect targets.
const (
	SignInPath     = "/?sign-in=true"
	OnboardingPath = "/onboarding"
	JobsPath       = "/jobs"
)

// Page routes, keyed by chi pattern.
var pagePolicies = map[string]Gate{
	"/":           GatePublic,
	"/onboarding": GateOnboarding,
	"/jobs":       GateRole,
	"/job/{id}":   GateRole,
	"/saved-jobs": GateRole,
	"/my-jobs":    GateRole,
	"/post-job":   GateRecruiter,
}

// JSON API operations, keyed by camel-cased OpenAPI operation id.
var operationPolicies = map[string]Gate{
	"ListJobs":           GateRole,
	"GetJob":             GateRole,
	"UpdateHiringStatus": GateRecruiter,
	"ToggleSavedJob":     GateRole,
	"ListCompanies":      GateRole,
	"ListSavedJobs":      GateRole,
}

// PagePolicy returns the gate for a page route.
func PagePolicy(route string) (Gate, bool) {
	g, ok := pagePolicies[route]
	return g, ok
}

// OperationPolicy returns the gate for an API operation.
func OperationPolicy(operationID string) (Gate, bool) {
	g, ok := operationPolicies[operationID]
	return g, ok
}

// Outcome classifies a decision.
type Outcome int

const (
	Allow Outcome = iota
	// SignedOut means the visitor must sign in first.
	SignedOut
	// NeedsRole means the visitor must pick a role first.
	NeedsRole
	// WrongRole means the visitor's role may not see the route.
	WrongRole
)

// Decision is the result of evaluating a gate.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

// Allowed reports whether the route renders.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Decide evaluates gate for user; a nil user is signed out. Checks run in
// order: signed in, role present, role matches.
func Decide(gate Gate, user *domain.User) Decision {
	if gate == GatePublic {
		return Decision{Outcome: Allow}
	}
	if user == nil {
		return Decision{Outcome: SignedOut, Redirect: SignInPath}
	}

	role := user.Role()
	switch gate {
	case GateOnboarding:
		if role.Valid() {
			return Decision{Outcome: WrongRole, Redirect: role.Landing()}
		}
		return Decision{Outcome: Allow}
	case GateRole, GateRecruiter:
		if !role.Valid() {
			return Decision{Outcome: NeedsRole, Redirect: OnboardingPath}
		}
		if gate == GateRecruiter && role != domain.RoleRecruiter {
			return Decision{Outcome: WrongRole, Redirect: JobsPath}
		}
		return Decision{Outcome: Allow}
	}
	return Decision{Outcome: WrongRole, Redirect: JobsPath}
}
