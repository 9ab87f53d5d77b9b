package osint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// GitHubSource looks up a public GitHub user profile by the candidate
// username. Uses the unauthenticated users API only.
type GitHubSource struct {
	BaseURL string // defaults to https://api.github.com
	Client  *http.Client
}

// Name implements Source.
func (s *GitHubSource) Name() string {
	return "github"
}

// Lookup fetches the public profile for the derived username.
func (s *GitHubSource) Lookup(ctx context.Context, ids Identifiers) (map[string]any, error) {
	base := s.BaseURL
	if base == "" {
		base = "https://api.github.com"
	}
	client := s.Client
	if client == nil {
		client = defaultClient
	}
	if ids.Username == "" {
		return nil, errors.New("no candidate username")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/users/"+ids.Username, nil)
	if err != nil {
		return nil, fmt.Errorf("building github request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github returned status %d", resp.StatusCode)
	}

	var user map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decoding github response: %w", err)
	}

	return map[string]any{
		"username":     ids.Username,
		"avatar_url":   user["avatar_url"],
		"name":         user["name"],
		"bio":          user["bio"],
		"public_repos": user["public_repos"],
		"followers":    user["followers"],
	}, nil
}
