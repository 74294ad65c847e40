package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annolab/margin/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token test-token", r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/users/octocat":
			w.Write([]byte(`{"login":"octocat","name":"The Octocat","avatar_url":"https://example.com/octocat.png"}`))
		case "/users/noname":
			w.Write([]byte(`{"login":"noname","name":"","avatar_url":"https://example.com/noname.png"}`))
		case "/users/ghost":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	gh := NewGitHub(server.URL, "test-token")
	ctx := context.Background()

	t.Run("resolves profile", func(t *testing.T) {
		id, err := gh.Lookup(ctx, "octocat")
		require.NoError(t, err)
		assert.Equal(t, "The Octocat", id.Name)
		assert.Equal(t, "https://example.com/octocat.png", id.AvatarURL)
	})

	t.Run("falls back to login when name empty", func(t *testing.T) {
		id, err := gh.Lookup(ctx, "noname")
		require.NoError(t, err)
		assert.Equal(t, "noname", id.Name)
	})

	t.Run("404 is a lookup not-found", func(t *testing.T) {
		_, err := gh.Lookup(ctx, "ghost")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeUserLookup))
	})

	t.Run("server error is a lookup failure", func(t *testing.T) {
		_, err := gh.Lookup(ctx, "broken")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeUserLookup))
	})
}

func TestStaticLookup(t *testing.T) {
	s := NewStatic(map[string]Identity{
		"ada": {Name: "Ada Lovelace", AvatarURL: "https://example.com/ada.png"},
	})

	id, err := s.Lookup(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", id.Name)

	_, err = s.Lookup(context.Background(), "unknown")
	assert.True(t, errors.Is(err, errors.ErrCodeUserLookup))
}
