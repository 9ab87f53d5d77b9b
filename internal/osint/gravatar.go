package osint

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// GravatarSource looks up public Gravatar profiles by hashed candidate
// email addresses. No credentials are sent; the profile JSON endpoint is
// fully public.
type GravatarSource struct {
	BaseURL string // defaults to https://www.gravatar.com
	Client  *http.Client
}

// Name implements Source.
func (s *GravatarSource) Name() string {
	return "gravatar"
}

// Lookup tries each candidate email in order and returns the first
// profile found. A miss on every candidate is a lookup failure.
func (s *GravatarSource) Lookup(ctx context.Context, ids Identifiers) (map[string]any, error) {
	base := s.BaseURL
	if base == "" {
		base = "https://www.gravatar.com"
	}
	client := s.Client
	if client == nil {
		client = defaultClient
	}
	if len(ids.Emails) == 0 {
		return nil, errors.New("no candidate emails")
	}

	for _, email := range ids.Emails {
		sum := md5.Sum([]byte(email))
		hash := hex.EncodeToString(sum[:])

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+hash+".json", nil)
		if err != nil {
			return nil, fmt.Errorf("building gravatar request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("gravatar request: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			continue
		}

		var profile map[string]any
		err = json.NewDecoder(resp.Body).Decode(&profile)
		resp.Body.Close()
		if err != nil {
			continue
		}

		return map[string]any{
			"email":   email,
			"profile": profile,
		}, nil
	}

	return nil, errors.New("no gravatar profile for any candidate email")
}
