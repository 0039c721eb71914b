package auth

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
)

func TestEmptySetIsOpen(t *testing.T) {
	s := NewUserSet(nil)
	if s.Policy() != PolicyOpen || !s.Allows("42") {
		t.Error("empty set should allow everyone")
	}

	s.Add("7")
	if s.Policy() != PolicyRestricted || s.Allows("42") || !s.Allows("7") {
		t.Error("non-empty set should only allow listed users")
	}
}

func TestUserSetDeduplicates(t *testing.T) {
	s := NewUserSet([]string{"1", " 2 ", "1", "", "3"})
	if got := s.List(); !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Errorf("List = %q", got)
	}
	if s.Add("2") {
		t.Error("duplicate add reported a change")
	}
	if !s.Remove("2") || s.Remove("2") {
		t.Error("remove should change the set exactly once")
	}
}

func TestAuthorizerWithMemoryRepository(t *testing.T) {
	ctx := context.Background()
	a := NewAuthorizer(NewMemoryRepository(), logger.Discard())

	if ok, _ := a.IsAuthorized(ctx, "100"); !ok {
		t.Fatal("open policy should admit")
	}

	if added, err := a.AddUser(ctx, "200"); err != nil || !added {
		t.Fatalf("AddUser = %v, %v", added, err)
	}
	if ok, _ := a.IsAuthorized(ctx, "100"); ok {
		t.Error("100 admitted under restricted policy")
	}
	if p, _ := a.Policy(ctx); p != PolicyRestricted {
		t.Errorf("policy = %s", p)
	}

	if removed, _ := a.RemoveUser(ctx, "200"); !removed {
		t.Error("RemoveUser reported no change")
	}
	if ok, _ := a.IsAuthorized(ctx, "100"); !ok {
		t.Error("emptied set should be open again")
	}
	if _, err := a.AddUser(ctx, ""); err == nil {
		t.Error("empty id accepted")
	}
}

func repositoryRoundTrip(t *testing.T, repo interfaces.UserRepository) {
	t.Helper()
	ctx := context.Background()

	users, err := repo.Load(ctx)
	if err != nil || len(users) != 0 {
		t.Fatalf("initial Load = %q, %v", users, err)
	}

	want := []string{"30", "10", "20"}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Load(ctx)
	if err != nil || !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %q, %v", got, err)
	}

	if err := repo.Save(ctx, []string{"10"}); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.Load(ctx)
	if !reflect.DeepEqual(got, []string{"10"}) {
		t.Errorf("after shrink Load = %q", got)
	}
}

func TestJSONFileRepository(t *testing.T) {
	repositoryRoundTrip(t, NewJSONFileRepository(filepath.Join(t.TempDir(), "users.json")))
}

func TestJSONFileRepositoryAcceptsNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authorized_users.json")
	if err := os.WriteFile(path, []byte(`["123", 456]`), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := NewJSONFileRepository(path).Load(context.Background())
	if err != nil || !reflect.DeepEqual(got, []string{"123", "456"}) {
		t.Errorf("Load = %q, %v", got, err)
	}

	if err := os.WriteFile(path, []byte(`{"users": []}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJSONFileRepository(path).Load(context.Background()); err == nil {
		t.Error("object accepted as user list")
	}
}

func TestSQLiteRepository(t *testing.T) {
	repo, err := OpenSQLiteRepository(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()
	repositoryRoundTrip(t, repo)
}

func TestNewRepositoryFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.UsersFile = filepath.Join(dir, "users.json")
	cfg.Storage.UsersDB = filepath.Join(dir, "users.db")

	repo, closer, err := NewRepository(cfg)
	if err != nil {
		t.Fatal(err)
	}
	closer.Close()
	if _, ok := repo.(*JSONFileRepository); !ok {
		t.Errorf("default backend = %T", repo)
	}

	cfg.Storage.UsersBackend = config.UsersBackendSQLite
	repo, closer, err = NewRepository(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()
	if _, ok := repo.(*SQLiteRepository); !ok {
		t.Errorf("sqlite backend = %T", repo)
	}

	cfg.Storage.UsersBackend = "redis"
	if _, _, err := NewRepository(cfg); err == nil {
		t.Error("unknown backend accepted")
	}
}
