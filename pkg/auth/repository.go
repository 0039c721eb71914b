package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// NewRepository opens the user repository selected by the storage section.
// The returned closer releases the backend.
func NewRepository(cfg *config.Config) (interfaces.UserRepository, io.Closer, error) {
	switch cfg.Storage.UsersBackend {
	case config.UsersBackendSQLite:
		repo, err := OpenSQLiteRepository(cfg.Storage.UsersDB)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	case config.UsersBackendJSON, "":
		return NewJSONFileRepository(cfg.Storage.UsersFile), nopCloser{}, nil
	default:
		return nil, nil, utils.NewValidationError(fmt.Sprintf("unknown users backend: %s", cfg.Storage.UsersBackend), nil)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// JSONFileRepository stores users as a JSON array of strings
type JSONFileRepository struct {
	path string
}

var _ interfaces.UserRepository = (*JSONFileRepository)(nil)

// NewJSONFileRepository creates a repository backed by path
func NewJSONFileRepository(path string) *JSONFileRepository {
	return &JSONFileRepository{path: path}
}

// Path returns the backing file
func (r *JSONFileRepository) Path() string {
	return r.path
}

// Load reads the file. A missing file is an empty list. Numeric entries are
// accepted and converted to strings.
func (r *JSONFileRepository) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, utils.NewValidationError(fmt.Sprintf("%s is not a JSON list", r.path), err)
	}

	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			ids = append(ids, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err == nil {
			if _, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
				ids = append(ids, n.String())
				continue
			}
		}
		return nil, utils.NewValidationError(fmt.Sprintf("invalid user id %s in %s", string(item), r.path), nil)
	}
	return ids, nil
}

// Save replaces the file atomically
func (r *JSONFileRepository) Save(ctx context.Context, users []string) error {
	if users == nil {
		users = []string{}
	}
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(r.path)
	if err := utils.EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".users-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), constants.DefaultFilePermission); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

// MemoryRepository keeps users in memory
type MemoryRepository struct {
	mu    sync.Mutex
	users []string
}

var _ interfaces.UserRepository = (*MemoryRepository)(nil)

// NewMemoryRepository creates an in-memory repository seeded with users
func NewMemoryRepository(users ...string) *MemoryRepository {
	return &MemoryRepository{users: users}
}

// Load returns a copy of the stored users
func (r *MemoryRepository) Load(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.users...), nil
}

// Save replaces the stored users
func (r *MemoryRepository) Save(ctx context.Context, users []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append([]string(nil), users...)
	return nil
}
