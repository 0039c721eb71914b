package interfaces

import "context"

// UserRepository persists the authorized user list
type UserRepository interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, users []string) error
}
