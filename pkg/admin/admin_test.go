package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GSKISBOT/fileconvertor/pkg/auth"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
)

// blockingRun runs until cancelled and counts how many runs started
func blockingRun(started *atomic.Int32) RunFunc {
	return func(ctx context.Context) error {
		started.Add(1)
		<-ctx.Done()
		return ctx.Err()
	}
}

func TestSupervisorStartStop(t *testing.T) {
	var started atomic.Int32
	sup := NewSupervisor(blockingRun(&started), logger.Discard())

	if st := sup.Status(); st.State != StateStopped || st.Running {
		t.Fatalf("initial status = %+v", st)
	}
	if !sup.Start(context.Background()) {
		t.Fatal("first Start should start")
	}
	if sup.Start(context.Background()) {
		t.Error("second Start should be a no-op")
	}
	if st := sup.Status(); !st.Running || st.StartedAt.IsZero() {
		t.Errorf("running status = %+v", st)
	}

	stopped, err := sup.Stop(context.Background())
	if err != nil || !stopped {
		t.Fatalf("Stop = %v, %v", stopped, err)
	}
	if st := sup.Status(); st.State != StateStopped || st.LastError != "" {
		t.Errorf("stopped status = %+v", st)
	}
	if stopped, _ := sup.Stop(context.Background()); stopped {
		t.Error("Stop on a stopped supervisor should report false")
	}

	if !sup.Start(context.Background()) {
		t.Fatal("restart should start")
	}
	_, _ = sup.Stop(context.Background())
	if started.Load() != 2 {
		t.Errorf("runs = %d, want 2", started.Load())
	}
}

func TestSupervisorConcurrentStartRunsOnce(t *testing.T) {
	var started atomic.Int32
	sup := NewSupervisor(blockingRun(&started), logger.Discard())

	var wg sync.WaitGroup
	var wins atomic.Int32
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sup.Start(context.Background()) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	_, _ = sup.Stop(context.Background())

	if wins.Load() != 1 || started.Load() != 1 {
		t.Errorf("wins = %d, runs = %d", wins.Load(), started.Load())
	}
}

func TestSupervisorRecordsRunError(t *testing.T) {
	sup := NewSupervisor(func(ctx context.Context) error {
		return errors.New("bad token")
	}, logger.Discard())

	sup.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for sup.Status().State != StateStopped && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	st := sup.Status()
	if st.State != StateStopped || st.LastError != "bad token" {
		t.Errorf("status = %+v", st)
	}
}

func TestNewServerNeedsPassword(t *testing.T) {
	_, err := NewServer(Options{Logger: logger.Discard()})
	if err == nil {
		t.Error("expected error without a password")
	}
	_, err = NewServer(Options{PasswordHash: "plain-text", Logger: logger.Discard()})
	if err == nil {
		t.Error("expected error for a non-bcrypt hash")
	}
}

type consoleHarness struct {
	srv    *httptest.Server
	client *http.Client
	repo   *auth.MemoryRepository
	sup    *Supervisor
}

func newConsole(t *testing.T) *consoleHarness {
	t.Helper()

	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	repo := auth.NewMemoryRepository("111")
	var started atomic.Int32
	sup := NewSupervisor(blockingRun(&started), logger.Discard())
	t.Cleanup(func() { _, _ = sup.Stop(context.Background()) })

	server, err := NewServer(Options{
		PasswordHash: hash,
		Supervisor:   sup,
		Authorizer:   auth.NewAuthorizer(repo, logger.Discard()),
		Logger:       logger.Discard(),
	})
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)
	jar, _ := cookiejar.New(nil)
	return &consoleHarness{srv: srv, client: &http.Client{Jar: jar}, repo: repo, sup: sup}
}

func (h *consoleHarness) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.Get(h.srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (h *consoleHarness) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := h.client.PostForm(h.srv.URL+path, form)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (h *consoleHarness) login(t *testing.T) {
	t.Helper()
	resp, body := h.post(t, "/login", url.Values{"password": {"s3cret"}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Authorized users") {
		t.Fatalf("login landed on %d: %s", resp.StatusCode, body)
	}
}

func TestConsoleRequiresLogin(t *testing.T) {
	h := newConsole(t)

	resp, body := h.get(t, "/")
	if resp.Request.URL.Path != "/login" || !strings.Contains(body, "Stopped") {
		t.Errorf("unauthenticated / ended at %s", resp.Request.URL.Path)
	}

	resp, _ = h.get(t, "/api/status")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("/api/status = %d", resp.StatusCode)
	}

	resp, body = h.post(t, "/login", url.Values{"password": {"wrong"}})
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(body, "Invalid password!") {
		t.Errorf("bad login = %d", resp.StatusCode)
	}

	resp, _ = h.post(t, "/start_bot", nil)
	if resp.Request.URL.Path != "/login" || h.sup.Status().Running {
		t.Error("start_bot must not run without a session")
	}

	resp, _ = h.get(t, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health = %d", resp.StatusCode)
	}
}

func TestConsoleUserManagement(t *testing.T) {
	h := newConsole(t)
	h.login(t)
	ctx := context.Background()

	_, body := h.post(t, "/add_user", url.Values{"user_id": {"12ab"}})
	if !strings.Contains(body, "User ID must be numeric!") {
		t.Error("expected numeric validation flash")
	}

	_, body = h.post(t, "/add_user", url.Values{"user_id": {" 222 "}})
	if !strings.Contains(body, "User 222 added successfully!") {
		t.Error("expected added flash")
	}
	users, _ := h.repo.Load(ctx)
	if strings.Join(users, ",") != "111,222" {
		t.Errorf("users = %v", users)
	}

	_, body = h.post(t, "/add_user", url.Values{"user_id": {"222"}})
	if !strings.Contains(body, "User already exists!") {
		t.Error("expected duplicate flash")
	}

	_, body = h.post(t, "/remove_user/111", nil)
	if !strings.Contains(body, "User 111 removed successfully!") {
		t.Error("expected removed flash")
	}
	_, body = h.post(t, "/remove_user/999", nil)
	if !strings.Contains(body, "User not found!") {
		t.Error("expected not found flash")
	}

	users, _ = h.repo.Load(ctx)
	if strings.Join(users, ",") != "222" {
		t.Errorf("users = %v", users)
	}
}

func TestConsoleBotControl(t *testing.T) {
	h := newConsole(t)
	h.login(t)

	_, body := h.post(t, "/start_bot", nil)
	if !strings.Contains(body, "Bot started successfully!") || !h.sup.Status().Running {
		t.Fatal("bot did not start")
	}

	resp, body := h.get(t, "/api/status")
	var status struct {
		BotRunning bool   `json:"bot_running"`
		State      string `json:"state"`
		UserCount  int    `json:"user_count"`
		Policy     string `json:"policy"`
	}
	if err := json.Unmarshal([]byte(body), &status); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %v", resp.StatusCode, err)
	}
	if !status.BotRunning || status.State != "running" || status.UserCount != 1 || status.Policy != "restricted" {
		t.Errorf("status = %+v", status)
	}

	_, body = h.post(t, "/stop_bot", nil)
	if !strings.Contains(body, "Bot stopped successfully!") || h.sup.Status().Running {
		t.Error("bot did not stop")
	}

	_, body = h.get(t, "/logout")
	if !strings.Contains(body, "Log in") {
		t.Error("logout should land on the login page")
	}
	resp, _ = h.get(t, "/api/status")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status after logout = %d", resp.StatusCode)
	}
}
