package github_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
	githubinfra "github.com/m-mizutani/spotless-bot/pkg/infra/github"
)

func writePEM(t *testing.T, blockType string, der []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "private-key.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der})
	gt.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func newRSAKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err)
	return key, writePEM(t, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key))
}

func TestNewApp_PrivateKey(t *testing.T) {
	t.Run("PKCS1 key", func(t *testing.T) {
		_, path := newRSAKey(t)
		app, err := githubinfra.NewApp("12345", path)
		gt.NoError(t, err)
		gt.Value(t, app).NotNil()
	})

	t.Run("PKCS8 key", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		gt.NoError(t, err)
		der, err := x509.MarshalPKCS8PrivateKey(key)
		gt.NoError(t, err)

		app, err := githubinfra.NewApp("12345", writePEM(t, "PRIVATE KEY", der))
		gt.NoError(t, err)
		gt.Value(t, app).NotNil()
	})

	t.Run("missing key file", func(t *testing.T) {
		_, err := githubinfra.NewApp("12345", filepath.Join(t.TempDir(), "missing.pem"))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("malformed key file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.pem")
		gt.NoError(t, os.WriteFile(path, []byte("not a key"), 0600))

		_, err := githubinfra.NewApp("12345", path)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("non RSA key", func(t *testing.T) {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		gt.NoError(t, err)
		der, err := x509.MarshalPKCS8PrivateKey(key)
		gt.NoError(t, err)

		_, err = githubinfra.NewApp("12345", writePEM(t, "PRIVATE KEY", der))
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("missing app id", func(t *testing.T) {
		_, path := newRSAKey(t)
		_, err := githubinfra.NewApp("", path)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})
}

func TestApp_Installation(t *testing.T) {
	key, path := newRSAKey(t)
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	var gotIssuer string
	var gotExpiration, gotIssuedAt time.Time

	mux := http.NewServeMux()
	mux.HandleFunc("POST /app/installations/99/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		token, err := jwt.Parse([]byte(bearer),
			jwt.WithKey(jwa.RS256, &key.PublicKey),
			jwt.WithValidate(false),
		)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		gotIssuer = token.Issuer()
		gotIssuedAt = token.IssuedAt()
		gotExpiration = token.Expiration()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "ghs_installation_token",
			"expires_at": now.Add(time.Hour).Format(time.RFC3339),
		})
	})
	mux.HandleFunc("POST /app/installations/404/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	app, err := githubinfra.NewApp("12345", path,
		githubinfra.WithBaseURL(server.URL),
		githubinfra.WithClock(func() time.Time { return now }),
	)
	gt.NoError(t, err)

	t.Run("exchanges signed JWT for installation token", func(t *testing.T) {
		token, err := app.Installation(context.Background(), 99)
		gt.NoError(t, err)
		gt.Value(t, token.Token).Equal("ghs_installation_token")
		gt.Value(t, token.InstallationID).Equal(int64(99))
		gt.True(t, token.ExpiresAt.Equal(now.Add(time.Hour)))

		gt.Value(t, gotIssuer).Equal("12345")
		gt.True(t, gotIssuedAt.Before(now))
		gt.True(t, gotExpiration.After(now))
		gt.True(t, gotExpiration.Sub(now) <= 10*time.Minute)
	})

	t.Run("token endpoint failure is returned", func(t *testing.T) {
		_, err := app.Installation(context.Background(), 404)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains("failed to create installation token")
	})
}

func TestClient(t *testing.T) {
	_, path := newRSAKey(t)

	var deleted []string
	var created []string

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/owner/repo/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Header.Get("Authorization")).Equal("Bearer ghs_token")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"number": 7,
			"maintainer_can_modify": false,
			"head": {
				"ref": "feature/format",
				"sha": "0123abcd",
				"repo": {"id": 2, "name": "repo", "full_name": "someone/repo", "clone_url": "https://github.com/someone/repo.git", "owner": {"login": "someone"}}
			},
			"base": {
				"ref": "main",
				"sha": "fedc3210",
				"repo": {"id": 1, "name": "repo", "full_name": "owner/repo", "clone_url": "https://github.com/owner/repo.git", "owner": {"login": "owner"}}
			}
		}`))
	})
	mux.HandleFunc("GET /users/spotless-bot[bot]", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 41898282, "login": "spotless-bot[bot]"}`))
	})
	mux.HandleFunc("GET /repos/owner/repo/issues/comments/42/reactions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`[{"id": 3, "content": "+1", "user": {"login": "octocat"}}]`))
			return
		}
		w.Header().Set("Link", `<`+"http://"+r.Host+r.URL.Path+`?page=2>; rel="next"`)
		_, _ = w.Write([]byte(`[
			{"id": 1, "content": "eyes", "user": {"login": "spotless-bot[bot]"}},
			{"id": 2, "content": "heart", "user": {"login": "octocat"}}
		]`))
	})
	mux.HandleFunc("POST /repos/owner/repo/issues/comments/42/reactions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		created = append(created, body.Content)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 10, "content": "` + body.Content + `"}`))
	})
	mux.HandleFunc("DELETE /repos/owner/repo/issues/comments/42/reactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = append(deleted, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	app, err := githubinfra.NewApp("12345", path, githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	ctx := context.Background()
	client := app.Client(&model.InstallationToken{Token: "ghs_token"})

	t.Run("GetPullRequest", func(t *testing.T) {
		pr, err := client.GetPullRequest(ctx, "owner", "repo", 7)
		gt.NoError(t, err)
		gt.Value(t, pr.Number).Equal(7)
		gt.Value(t, pr.HeadRef).Equal("feature/format")
		gt.Value(t, pr.HeadSHA).Equal("0123abcd")
		gt.Value(t, pr.HeadRepo.FullName).Equal("someone/repo")
		gt.Value(t, pr.HeadRepo.CloneURL).Equal("https://github.com/someone/repo.git")
		gt.Value(t, pr.BaseRepo.ID).Equal(int64(1))
		gt.False(t, pr.AllowsModification())
	})

	t.Run("GetPullRequest not found", func(t *testing.T) {
		_, err := client.GetPullRequest(ctx, "owner", "repo", 8)
		gt.Error(t, err)
	})

	t.Run("GetUser", func(t *testing.T) {
		user, err := client.GetUser(ctx, "spotless-bot[bot]")
		gt.NoError(t, err)
		gt.Value(t, user.ID).Equal(int64(41898282))
	})

	t.Run("ListCommentReactions follows pagination", func(t *testing.T) {
		reactions, err := client.ListCommentReactions(ctx, "owner", "repo", 42)
		gt.NoError(t, err)
		gt.Number(t, len(reactions)).Equal(3)
		gt.Value(t, reactions[0].User).Equal("spotless-bot[bot]")
		gt.Value(t, reactions[0].Content).Equal(model.ReactionEyes)
		gt.Value(t, reactions[2].ID).Equal(int64(3))
	})

	t.Run("CreateCommentReaction", func(t *testing.T) {
		gt.NoError(t, client.CreateCommentReaction(ctx, "owner", "repo", 42, model.ReactionThumbsUp))
		gt.Value(t, created).Equal([]string{"+1"})
	})

	t.Run("DeleteCommentReaction", func(t *testing.T) {
		gt.NoError(t, client.DeleteCommentReaction(ctx, "owner", "repo", 42, 1))
		gt.Value(t, deleted).Equal([]string{"1"})
	})
}
