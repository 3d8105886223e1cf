// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package web

import (
	"crypto/rand"
	"crypto/subtle"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/ManuGH/jobjump/internal/control/auth"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/metrics"
)

const (
	stateCookie    = "jobjump_oauth_state"
	verifierCookie = "jobjump_oauth_verifier"
	flowCookiePath = "/auth"
	flowCookieTTL  = 10 * time.Minute
)

func (h *Handler) setFlowCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     flowCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// signIn starts the authorization-code flow with a fresh state and PKCE
// verifier.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		h.renderError(w, r, http.StatusServiceUnavailable, "Sign-in is not configured.")
		return
	}
	state := rand.Text()
	verifier := oauth2.GenerateVerifier()
	h.setFlowCookie(w, stateCookie, state, int(flowCookieTTL.Seconds()))
	h.setFlowCookie(w, verifierCookie, verifier, int(flowCookieTTL.Seconds()))
	http.Redirect(w, r, h.identity.AuthCodeURL(state, verifier), http.StatusFound)
}

// callback finishes sign-in and sends the user to onboarding, which forwards
// users who already picked a role.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	if h.identity == nil {
		h.renderError(w, r, http.StatusServiceUnavailable, "Sign-in is not configured.")
		return
	}
	logger := log.WithContext(r.Context(), h.logger)
	h.setFlowCookie(w, stateCookie, "", -1)
	h.setFlowCookie(w, verifierCookie, "", -1)

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		metrics.RecordSignIn("denied")
		logger.Info().Str(log.FieldEvent, "signin.denied").Str("error", e).Msg("identity provider returned an error")
		h.renderError(w, r, http.StatusUnauthorized, "Sign-in was cancelled.")
		return
	}

	stateC, err1 := r.Cookie(stateCookie)
	verifierC, err2 := r.Cookie(verifierCookie)
	if err1 != nil || err2 != nil || stateC.Value == "" ||
		subtle.ConstantTimeCompare([]byte(stateC.Value), []byte(q.Get("state"))) != 1 {
		metrics.RecordSignIn("state_mismatch")
		logger.Warn().Str(log.FieldEvent, "signin.state_mismatch").Msg("sign-in state does not match")
		h.renderError(w, r, http.StatusBadRequest, "Sign-in expired. Please try again.")
		return
	}

	tok, err := h.identity.Exchange(r.Context(), q.Get("code"), verifierC.Value)
	if err != nil {
		metrics.RecordSignIn("exchange_failed")
		logger.Warn().Err(err).Str(log.FieldEvent, "signin.exchange_failed").Msg("code exchange failed")
		h.renderError(w, r, http.StatusBadGateway, "Sign-in failed. Please try again.")
		return
	}
	user, err := h.identity.FetchUser(r.Context(), tok)
	if err != nil {
		metrics.RecordSignIn("user_failed")
		logger.Warn().Err(err).Str(log.FieldEvent, "signin.user_failed").Msg("user lookup failed")
		h.renderError(w, r, http.StatusBadGateway, "Sign-in failed. Please try again.")
		return
	}

	sess, err := h.sessions.Create(r.Context(), user, tok.AccessToken)
	if err != nil {
		metrics.RecordSignIn("session_failed")
		logger.Error().Err(err).Str(log.FieldEvent, "signin.session_failed").Msg("session store unavailable")
		h.renderError(w, r, http.StatusServiceUnavailable, "Sign-in is temporarily unavailable.")
		return
	}
	auth.SetSessionCookie(w, h.cookie, sess.ID, h.sessions.TTL())
	metrics.RecordSignIn("ok")
	logger.Info().Str(log.FieldEvent, "signin.ok").Str(log.FieldUserID, user.ID).Msg("user signed in")
	seeOther(w, r, "/onboarding")
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if p := principal(r); p != nil && p.SessionID != "" {
		if err := h.sessions.Delete(r.Context(), p.SessionID); err != nil {
			logger := log.WithContext(r.Context(), h.logger)
			logger.Warn().Err(err).Str(log.FieldEvent, "signout.failed").Msg("session delete failed")
		}
	}
	auth.ClearSessionCookie(w, h.cookie)
	seeOther(w, r, "/")
}
