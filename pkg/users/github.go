package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/annolab/margin/errors"
)

// GitHub resolves identities through the GitHub users API.
type GitHub struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewGitHub creates a GitHub lookup against baseURL (e.g.
// https://api.github.com). token is optional; when set it is sent on every
// request, which also raises the rate limit.
func NewGitHub(baseURL, token string) *GitHub {
	return &GitHub{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Lookup fetches the user's profile. A 404 maps to a USER_LOOKUP not-found;
// everything else non-200 is a lookup failure.
func (g *GitHub) Lookup(ctx context.Context, username string) (Identity, error) {
	endpoint := fmt.Sprintf("%s/users/%s", g.baseURL, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Identity{}, errors.UserLookupFailed(err, username)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if g.token != "" {
		req.Header.Set("Authorization", "token "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Identity{}, errors.UserLookupFailed(err, username)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Identity{}, errors.UserNotFound(username)
	case resp.StatusCode != http.StatusOK:
		return Identity{}, errors.UserLookupFailed(
			fmt.Errorf("unexpected status %d", resp.StatusCode), username)
	}

	var user githubUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Identity{}, errors.UserLookupFailed(err, username)
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return Identity{Name: name, AvatarURL: user.AvatarURL}, nil
}
