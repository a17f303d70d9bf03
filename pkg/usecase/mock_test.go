package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/m-mizutani/spotless-bot/pkg/domain/interfaces"
	"github.com/m-mizutani/spotless-bot/pkg/domain/model"
)

// MockGitHubApp is a mock implementation of GitHubApp
type MockGitHubApp struct {
	client           *MockGitHubClient
	installationFunc func(ctx context.Context, installationID int64) (*model.InstallationToken, error)
	installCalls     []int64
	mutex            sync.Mutex
}

func (m *MockGitHubApp) Installation(ctx context.Context, installationID int64) (*model.InstallationToken, error) {
	m.mutex.Lock()
	m.installCalls = append(m.installCalls, installationID)
	m.mutex.Unlock()
	if m.installationFunc != nil {
		return m.installationFunc(ctx, installationID)
	}
	return &model.InstallationToken{InstallationID: installationID, Token: "ghs_test_token"}, nil
}

func (m *MockGitHubApp) Client(token *model.InstallationToken) interfaces.GitHubClient {
	return m.client
}

func (m *MockGitHubApp) InstallCalls() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.installCalls)
}

// MockGitHubClient is a mock implementation of GitHubClient. Reactions are
// kept in memory so that list and delete reflect earlier calls.
type MockGitHubClient struct {
	pullRequest *model.PullRequest
	getPRErr    error
	users       map[string]int64
	listErr     error
	deleteErr   error
	createErr   error

	mutex     sync.Mutex
	reactions []*model.Reaction
	nextID    int64
	created   []model.ReactionContent
	deleted   []int64
	userCalls int
}

func (m *MockGitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	if m.getPRErr != nil {
		return nil, m.getPRErr
	}
	if m.pullRequest == nil {
		return nil, errors.New("mock not configured")
	}
	return m.pullRequest, nil
}

func (m *MockGitHubClient) GetUser(ctx context.Context, login string) (*model.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.userCalls++
	id, ok := m.users[login]
	if !ok {
		return nil, fmt.Errorf("user %s not found", login)
	}
	return &model.User{ID: id, Login: login}, nil
}

func (m *MockGitHubClient) ListCommentReactions(ctx context.Context, owner, repo string, commentID int64) ([]*model.Reaction, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]*model.Reaction{}, m.reactions...), nil
}

func (m *MockGitHubClient) CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, content model.ReactionContent) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	m.reactions = append(m.reactions, &model.Reaction{ID: 1000 + m.nextID, User: "spotless-bot[bot]", Content: content})
	m.created = append(m.created, content)
	return nil
}

func (m *MockGitHubClient) DeleteCommentReaction(ctx context.Context, owner, repo string, commentID, reactionID int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.deleted = append(m.deleted, reactionID)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	var kept []*model.Reaction
	for _, r := range m.reactions {
		if r.ID != reactionID {
			kept = append(kept, r)
		}
	}
	m.reactions = kept
	return nil
}

func (m *MockGitHubClient) Created() []model.ReactionContent {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]model.ReactionContent{}, m.created...)
}

func (m *MockGitHubClient) Deleted() []int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]int64{}, m.deleted...)
}

// Visible returns the reactions currently on the comment
func (m *MockGitHubClient) Visible() []*model.Reaction {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]*model.Reaction{}, m.reactions...)
}

// MockPipeline is a mock implementation of PipelineUseCase
type MockPipeline struct {
	runFunc func(ctx context.Context, req *model.RunRequest) *model.RunResult
	mutex   sync.Mutex
	calls   []*model.RunRequest
}

func (m *MockPipeline) Run(ctx context.Context, req *model.RunRequest) *model.RunResult {
	m.mutex.Lock()
	m.calls = append(m.calls, req)
	m.mutex.Unlock()
	if m.runFunc != nil {
		return m.runFunc(ctx, req)
	}
	return &model.RunResult{Outcome: model.OutcomeNoOp}
}

func (m *MockPipeline) Calls() []*model.RunRequest {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]*model.RunRequest{}, m.calls...)
}

// MockGit is a mock implementation of Git recording the order of calls
type MockGit struct {
	cloneFunc  func(ctx context.Context, remote, branch, dir string, auth *model.BotIdentity) error
	statusFunc func(ctx context.Context, dir string) (string, error)
	pushErr    error

	mutex sync.Mutex
	calls []string
}

func (m *MockGit) record(call string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.calls = append(m.calls, call)
}

func (m *MockGit) Calls() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]string{}, m.calls...)
}

func (m *MockGit) Clone(ctx context.Context, remote, branch, dir string, auth *model.BotIdentity) error {
	m.record("clone " + branch)
	if m.cloneFunc != nil {
		return m.cloneFunc(ctx, remote, branch, dir, auth)
	}
	return nil
}

func (m *MockGit) Config(ctx context.Context, dir, key, value string) error {
	m.record("config " + key + "=" + value)
	return nil
}

func (m *MockGit) Status(ctx context.Context, dir string) (string, error) {
	m.record("status")
	if m.statusFunc != nil {
		return m.statusFunc(ctx, dir)
	}
	return "", nil
}

func (m *MockGit) AddAll(ctx context.Context, dir string) error {
	m.record("add")
	return nil
}

func (m *MockGit) Commit(ctx context.Context, dir, message string) error {
	m.record("commit " + message)
	return nil
}

func (m *MockGit) Push(ctx context.Context, dir, branch string) error {
	m.record("push " + branch)
	return m.pushErr
}

// MockBuilder is a mock implementation of Builder
type MockBuilder struct {
	buildFunc func(ctx context.Context, dir, logPath string) error
}

func (m *MockBuilder) Build(ctx context.Context, dir, logPath string) error {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, dir, logPath)
	}
	return nil
}
