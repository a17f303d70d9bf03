package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub App configuration
type GitHub struct {
	WebhookSecret  string
	AppID          string
	PrivateKeyPath string
	BotName        string
	BotUserID      int64
	APIURL         string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret, required unless --dev-mode is set",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("SPOTLESS_BOT_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Required:    true,
			Destination: &c.AppID,
			Sources:     cli.EnvVars("SPOTLESS_BOT_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "Path to the PEM encoded private key of the GitHub App",
			Required:    true,
			Destination: &c.PrivateKeyPath,
			Sources:     cli.EnvVars("SPOTLESS_BOT_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-bot-name",
			Usage:       "Login of the App's bot account, used as commit author",
			Value:       "spotless-bot[bot]",
			Destination: &c.BotName,
			Sources:     cli.EnvVars("SPOTLESS_BOT_GITHUB_BOT_NAME"),
		},
		&cli.Int64Flag{
			Name:        "github-bot-user-id",
			Usage:       "Account ID of the bot, looked up by name when not set",
			Destination: &c.BotUserID,
			Sources:     cli.EnvVars("SPOTLESS_BOT_GITHUB_BOT_USER_ID"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub REST API base URL",
			Value:       "https://api.github.com/",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("SPOTLESS_BOT_GITHUB_API_URL"),
		},
	}
}
