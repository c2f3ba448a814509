// Package providers contains concrete identity provider implementations.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"pressroom/internal/config"
	"pressroom/internal/federation"
)

const githubAPIURL = "https://api.github.com"

// GitHubProvider implements federation.Provider for GitHub's OAuth web
// application flow. Client id and secret come from deployment
// configuration; they are never logged.
type GitHubProvider struct {
	config     *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewGitHubProvider creates a GitHub provider from OAuth configuration.
func NewGitHubProvider(cfg config.OAuth) *GitHubProvider {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     githuboauth.Endpoint,
		},
		apiURL: githubAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *GitHubProvider) Name() string {
	return "github"
}

// AuthCodeURL builds the authorization redirect target.
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token via the
// provider's token endpoint.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	if token.AccessToken == "" {
		return "", federation.ErrNoAccessToken
	}
	return token.AccessToken, nil
}

// FetchUsername retrieves the authenticated user's login name from the
// GitHub API.
func (p *GitHubProvider) FetchUsername(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/user", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read profile response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profile fetch failed with status %d", resp.StatusCode)
	}

	var profile struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", fmt.Errorf("failed to parse profile response: %w", err)
	}
	if profile.Login == "" {
		return "", fmt.Errorf("profile response contained no login name")
	}

	return profile.Login, nil
}
