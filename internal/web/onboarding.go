package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/metrics"
)

type onboardingView struct {
	Error string
}

func (h *Handler) onboardingPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "onboarding", "Onboarding", onboardingView{})
}

// selectRole stores the role in the identity provider's metadata bag,
// refreshes the session copy of the user and forwards to the role's landing
// page.
func (h *Handler) selectRole(w http.ResponseWriter, r *http.Request) {
	role := domain.ParseRole(r.PostFormValue("role"))
	if !role.Valid() {
		h.render(w, r, http.StatusUnprocessableEntity, "onboarding", "Onboarding", onboardingView{Error: "Choose Candidate or Recruiter."})
		return
	}
	if h.identity == nil {
		h.render(w, r, http.StatusServiceUnavailable, "onboarding", "Onboarding", onboardingView{Error: "Sign-in is not configured."})
		return
	}

	sessionID := principal(r).SessionID
	store := newLoader("onboarding.role", sessionID, func(ctx context.Context, c domain.Caller, sid string, role domain.Role) (domain.User, error) {
		u, err := h.identity.SetRole(ctx, c.UserID, role)
		if err != nil {
			return domain.User{}, err
		}
		if _, err := h.sessions.UpdateUser(ctx, sid, u); err != nil {
			return domain.User{}, errors.Join(errors.New("role saved but session not refreshed"), err)
		}
		return u, nil
	})
	if _, err := store.Do(r.Context(), role); err != nil {
		logger := log.WithContext(r.Context(), h.logger)
		logger.Warn().Err(err).Str(log.FieldEvent, "onboarding.failed").Str(log.FieldRole, string(role)).Msg("role update failed")
		h.render(w, r, http.StatusBadGateway, "onboarding", "Onboarding", onboardingView{Error: "Could not save your role. Please try again."})
		return
	}

	metrics.RecordRoleSelected(string(role))
	seeOther(w, r, role.Landing())
}
