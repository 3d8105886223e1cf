// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package identity signs users in with an OAuth2 identity provider, reads
// and updates their metadata bag and keeps server-side sessions.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/ManuGH/jobjump/internal/domain"
	xglog "github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/platform/httpx"
	platformnet "github.com/ManuGH/jobjump/internal/platform/net"
)

var (
	// ErrExchange is returned when the authorization code cannot be redeemed.
	ErrExchange = errors.New("identity: code exchange failed")
	// ErrUserInfo is returned when the signed-in user cannot be read.
	ErrUserInfo = errors.New("identity: user lookup failed")
	// ErrMetadata is returned when the metadata bag cannot be updated.
	ErrMetadata = errors.New("identity: metadata update failed")
)

// Config configures the identity provider client.
type Config struct {
	Issuer       string
	APIBase      string
	ClientID     string
	ClientSecret string
	SecretKey    string
	RedirectURL  string
	Scopes       []string
}

// Provider talks to the identity provider's OAuth2 endpoints and backend API.
type Provider struct {
	oauth     *oauth2.Config
	issuer    string
	apiBase   string
	secretKey string
	http      *http.Client
	logger    zerolog.Logger
}

// NewProvider validates the configuration and builds the OAuth2 client.
func NewProvider(cfg Config, httpClient *http.Client) (*Provider, error) {
	issuer, err := platformnet.NormalizeBaseURL(cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("identity issuer: %w", err)
	}
	apiBase := issuer
	if cfg.APIBase != "" {
		if apiBase, err = platformnet.NormalizeBaseURL(cfg.APIBase); err != nil {
			return nil, fmt.Errorf("identity api base: %w", err)
		}
	}
	if cfg.ClientID == "" {
		return nil, errors.New("identity: client id is empty")
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile", "email"}
	}
	if httpClient == nil {
		httpClient = httpx.NewClient(10 * time.Second)
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   issuer + "/oauth/authorize",
				TokenURL:  issuer + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		issuer:    issuer,
		apiBase:   apiBase,
		secretKey: cfg.SecretKey,
		http:      httpClient,
		logger:    xglog.WithComponent("identity"),
	}, nil
}

// AuthCodeURL returns the provider URL that starts sign-in. verifier is a
// PKCE verifier from oauth2.GenerateVerifier.
func (p *Provider) AuthCodeURL(state, verifier string) string {
	return p.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange redeems an authorization code.
func (p *Provider) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.http)
	tok, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchange, err)
	}
	return tok, nil
}

type userInfo struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// FetchUser resolves the user behind tok, including their metadata bag.
func (p *Provider) FetchUser(ctx context.Context, tok *oauth2.Token) (domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.issuer+"/oauth/userinfo", nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	tok.SetAuthHeader(req)

	var info userInfo
	if err := p.do(req, &info); err != nil {
		return domain.User{}, fmt.Errorf("%w: userinfo: %v", ErrUserInfo, err)
	}
	if info.Sub == "" {
		return domain.User{}, fmt.Errorf("%w: userinfo without subject", ErrUserInfo)
	}

	user, err := p.GetUser(ctx, info.Sub)
	if err != nil {
		// The backend API is optional for display fields; the role stays unknown.
		p.logger.Warn().Err(err).Str(xglog.FieldUserID, info.Sub).Msg("user lookup failed, using userinfo only")
		return domain.User{
			ID:        info.Sub,
			FirstName: info.GivenName,
			LastName:  info.FamilyName,
			Email:     info.Email,
			ImageURL:  info.Picture,
		}, nil
	}
	return user, nil
}

type apiUser struct {
	ID             string         `json:"id"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ImageURL       string         `json:"image_url"`
	UnsafeMetadata map[string]any `json:"unsafe_metadata"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

func (u apiUser) toDomain() domain.User {
	out := domain.User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ImageURL:  u.ImageURL,
		Metadata:  u.UnsafeMetadata,
	}
	if len(u.EmailAddresses) > 0 {
		out.Email = u.EmailAddresses[0].EmailAddress
	}
	return out
}

// GetUser reads a user through the backend API.
func (p *Provider) GetUser(ctx context.Context, id string) (domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL(id, ""), nil)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	p.backendAuth(req)

	var u apiUser
	if err := p.do(req, &u); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrUserInfo, err)
	}
	return u.toDomain(), nil
}

// UpdateMetadata merges meta into the user's unsafe metadata and returns
// the updated user.
func (p *Provider) UpdateMetadata(ctx context.Context, id string, meta map[string]any) (domain.User, error) {
	body, err := json.Marshal(map[string]any{"unsafe_metadata": meta})
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, p.userURL(id, "/metadata"), bytes.NewReader(body))
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	req.Header.Set("Content-Type", "application/json")
	p.backendAuth(req)

	var u apiUser
	if err := p.do(req, &u); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	return u.toDomain(), nil
}

// SetRole stores role in the metadata bag.
func (p *Provider) SetRole(ctx context.Context, id string, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", ErrMetadata, role)
	}
	return p.UpdateMetadata(ctx, id, map[string]any{domain.MetadataRoleKey: string(role)})
}

func (p *Provider) userURL(id, suffix string) string {
	return p.apiBase + "/v1/users/" + url.PathEscape(id) + suffix
}

func (p *Provider) backendAuth(req *http.Request) {
	if p.secretKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.secretKey)
	}
}

func (p *Provider) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(truncate(string(data), 256)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
