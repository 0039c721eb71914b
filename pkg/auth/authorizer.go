package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// Authorizer checks users against a repository-backed user set.
// Every check reads the repository, so edits made by another process
// take effect on the next message.
type Authorizer struct {
	mu     sync.Mutex
	repo   interfaces.UserRepository
	logger *logger.Logger
}

// NewAuthorizer creates an authorizer over repo
func NewAuthorizer(repo interfaces.UserRepository, log *logger.Logger) *Authorizer {
	return &Authorizer{repo: repo, logger: log}
}

// Users loads the current user set
func (a *Authorizer) Users(ctx context.Context) (*UserSet, error) {
	ids, err := a.repo.Load(ctx)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to load authorized users")
	}
	return NewUserSet(ids), nil
}

// IsAuthorized reports whether userID may use the bot
func (a *Authorizer) IsAuthorized(ctx context.Context, userID string) (bool, error) {
	users, err := a.Users(ctx)
	if err != nil {
		return false, err
	}
	return users.Allows(userID), nil
}

// Policy reports the policy currently in force
func (a *Authorizer) Policy(ctx context.Context) (Policy, error) {
	users, err := a.Users(ctx)
	if err != nil {
		return "", err
	}
	return users.Policy(), nil
}

// AddUser adds userID and reports whether it was new
func (a *Authorizer) AddUser(ctx context.Context, userID string) (bool, error) {
	return a.mutate(ctx, userID, (*UserSet).Add, "added")
}

// RemoveUser removes userID and reports whether it was present
func (a *Authorizer) RemoveUser(ctx context.Context, userID string) (bool, error) {
	return a.mutate(ctx, userID, (*UserSet).Remove, "removed")
}

func (a *Authorizer) mutate(ctx context.Context, userID string, op func(*UserSet, string) bool, verb string) (bool, error) {
	if userID == "" {
		return false, utils.NewValidationError("user id cannot be empty", nil)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	users, err := a.Users(ctx)
	if err != nil {
		return false, err
	}
	if !op(users, userID) {
		return false, nil
	}
	if err := a.repo.Save(ctx, users.List()); err != nil {
		return false, utils.WrapError(err, utils.ErrorTypeIO, fmt.Sprintf("failed to save authorized users after %s %s", verb, userID))
	}

	a.logger.Info("Authorized user %s %s (%d users)", userID, verb, users.Len())
	return true, nil
}
