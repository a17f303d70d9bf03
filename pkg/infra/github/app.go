package github

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
	"github.com/m-mizutani/spotless-bot/pkg/domain/types"
)

const (
	// jwtLifetime is the validity of the App JWT. GitHub rejects more than 10 minutes.
	jwtLifetime = 5 * time.Minute
	// jwtClockSkew backdates iat to tolerate clock drift against GitHub
	jwtClockSkew = 30 * time.Second
)

// App is a GitHub App credential. It signs JWTs with the App private key and
// exchanges them for installation access tokens.
type App struct {
	appID      string
	key        jwk.Key
	baseURL    *url.URL
	httpClient *http.Client
	now        func() time.Time
}

var _ interfaces.GitHubApp = (*App)(nil)

type appConfig struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// Option is a functional option for App
type Option func(*appConfig)

// WithBaseURL overrides the REST API endpoint, e.g. for GitHub Enterprise
func WithBaseURL(baseURL string) Option {
	return func(c *appConfig) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for API calls
func WithHTTPClient(client *http.Client) Option {
	return func(c *appConfig) {
		c.httpClient = client
	}
}

// WithClock replaces the time source used for JWT claims
func WithClock(now func() time.Time) Option {
	return func(c *appConfig) {
		c.now = now
	}
}

// NewApp loads the private key and returns an App. A missing or malformed
// key is reported immediately so that the server refuses to start.
func NewApp(appID, privateKeyPath string, opts ...Option) (*App, error) {
	cfg := &appConfig{
		httpClient: http.DefaultClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if appID == "" {
		return nil, goerr.New("GitHub App ID is not configured", goerr.T(types.ErrTagConfig))
	}

	raw, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key",
			goerr.V("path", privateKeyPath),
			goerr.T(types.ErrTagConfig),
		)
	}

	key, err := jwk.ParseKey(raw, jwk.WithPEM(true))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse GitHub App private key",
			goerr.V("path", privateKeyPath),
			goerr.T(types.ErrTagConfig),
		)
	}
	if _, ok := key.(jwk.RSAPrivateKey); !ok {
		return nil, goerr.New("GitHub App private key must be an RSA private key",
			goerr.V("path", privateKeyPath),
			goerr.V("key_type", key.KeyType()),
			goerr.T(types.ErrTagConfig),
		)
	}

	app := &App{
		appID:      appID,
		key:        key,
		httpClient: cfg.httpClient,
		now:        cfg.now,
	}

	if cfg.baseURL != "" {
		base := cfg.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub API URL",
				goerr.V("url", cfg.baseURL),
				goerr.T(types.ErrTagConfig),
			)
		}
		app.baseURL = u
	}

	return app, nil
}

// signJWT creates the short-lived assertion identifying the App itself
func (x *App) signJWT() (string, error) {
	now := x.now()
	token, err := jwt.NewBuilder().
		Issuer(x.appID).
		IssuedAt(now.Add(-jwtClockSkew)).
		Expiration(now.Add(jwtLifetime)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build App JWT")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, x.key))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign App JWT")
	}

	return string(signed), nil
}

func (x *App) newGitHubClient(token string) *github.Client {
	client := github.NewClient(x.httpClient).WithAuthToken(token)
	if x.baseURL != nil {
		client.BaseURL = x.baseURL
	}
	return client
}

// Installation issues an installation access token. Errors are not retried;
// the caller aborts the run.
func (x *App) Installation(ctx context.Context, installationID int64) (*model.InstallationToken, error) {
	assertion, err := x.signJWT()
	if err != nil {
		return nil, err
	}

	token, _, err := x.newGitHubClient(assertion).Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create installation token",
			goerr.V("installation_id", installationID),
		)
	}

	return &model.InstallationToken{
		InstallationID: installationID,
		Token:          token.GetToken(),
		ExpiresAt:      token.GetExpiresAt().Time,
	}, nil
}

// Client returns an API client acting as the installation
func (x *App) Client(token *model.InstallationToken) interfaces.GitHubClient {
	return &client{githubClient: x.newGitHubClient(token.Token)}
}
