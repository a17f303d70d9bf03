package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

// identityResolver derives the git identity of the bot account. The account
// id is configured or looked up once and then cached.
type identityResolver struct {
	botName string
	mutex   sync.Mutex
	userID  int64
}

func (x *identityResolver) Resolve(ctx context.Context, client interfaces.GitHubClient, token *model.InstallationToken) (*model.BotIdentity, error) {
	x.mutex.Lock()
	defer x.mutex.Unlock()

	if x.userID == 0 {
		user, err := client.GetUser(ctx, x.botName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve bot account", goerr.V("bot_name", x.botName))
		}
		x.userID = user.ID
	}

	return &model.BotIdentity{
		Name:  x.botName,
		Email: model.NoReplyEmail(x.userID, x.botName),
		Token: token.Token,
	}, nil
}
