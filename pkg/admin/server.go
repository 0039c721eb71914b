package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/GSKISBOT/fileconvertor/pkg/auth"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// HashPassword returns the bcrypt hash stored as admin.password_hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", utils.NewValidationError("password cannot be empty", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeSystem, "failed to hash password")
	}
	return string(hash), nil
}

// Options configures the console
type Options struct {
	// PasswordHash is a bcrypt hash; Password is used only when it is empty
	PasswordHash string
	Password     string
	Supervisor   *Supervisor
	Authorizer   *auth.Authorizer
	Logger       *logger.Logger
}

// Server is the console's HTTP handler
type Server struct {
	router     chi.Router
	supervisor *Supervisor
	authorizer *auth.Authorizer
	hash       []byte
	sessions   *sessionStore
	templates  *templateSet
	logger     *logger.Logger
	baseCtx    context.Context
}

// NewServer builds the console. A console without any password is refused.
func NewServer(opts Options) (*Server, error) {
	hash := opts.PasswordHash
	if hash == "" {
		if opts.Password == "" {
			return nil, utils.NewValidationError("admin console needs admin.password_hash or WEB_PASSWORD", nil)
		}
		var err error
		if hash, err = HashPassword(opts.Password); err != nil {
			return nil, err
		}
	} else if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, utils.NewValidationError("admin.password_hash is not a bcrypt hash", err)
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeSystem, "failed to parse console templates")
	}

	s := &Server{
		supervisor: opts.Supervisor,
		authorizer: opts.Authorizer,
		hash:       []byte(hash),
		sessions:   newSessionStore(),
		templates:  templates,
		logger:     opts.Logger,
		baseCtx:    context.Background(),
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done. Bots started from the
// console live under ctx.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.baseCtx = ctx
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Admin console listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return utils.WrapError(err, utils.ErrorTypeNetwork, "admin console failed")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})
	r.Get("/login", s.loginPage)
	r.Post("/login", s.login)
	r.Get("/logout", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.dashboard)
		r.Post("/start_bot", s.startBot)
		r.Post("/stop_bot", s.stopBot)
		r.Post("/add_user", s.addUser)
		r.Post("/remove_user/{userID}", s.removeUser)
		r.Get("/api/status", s.status)
	})
	return r
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions.valid(r) {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.sessions.valid(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, pageLogin, pageData{
		Title: "Log in",
		Data:  map[string]bool{"Running": s.supervisor.Status().Running},
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if bcrypt.CompareHashAndPassword(s.hash, []byte(r.PostFormValue("password"))) != nil {
		s.logger.Warn("Failed console login from %s", r.RemoteAddr)
		s.render(w, http.StatusUnauthorized, pageLogin, pageData{
			Title:   "Log in",
			Flashes: []flash{{Kind: "error", Text: "Invalid password!"}},
			Data:    map[string]bool{"Running": s.supervisor.Status().Running},
		})
		return
	}

	s.sessions.create(w, r)
	s.logger.Info("Console login from %s", r.RemoteAddr)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.destroy(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// dashboardData feeds dashboard.html
type dashboardData struct {
	Status Status
	Users  []string
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	flashes := s.sessions.popFlashes(r)

	users, err := s.authorizer.Users(r.Context())
	var ids []string
	if err != nil {
		s.logger.Error("Loading authorized users: %v", err)
		flashes = append(flashes, flash{Kind: "error", Text: "Could not load authorized users!"})
	} else {
		ids = users.List()
	}

	s.render(w, http.StatusOK, pageDashboard, pageData{
		Title:         "Dashboard",
		Authenticated: true,
		Flashes:       flashes,
		Data:          dashboardData{Status: s.supervisor.Status(), Users: ids},
	})
}

func (s *Server) startBot(w http.ResponseWriter, r *http.Request) {
	if s.supervisor.Start(s.baseCtx) {
		s.sessions.addFlash(r, "success", "Bot started successfully!")
	} else {
		s.sessions.addFlash(r, "warning", "Bot is already running!")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) stopBot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	stopped, err := s.supervisor.Stop(ctx)
	switch {
	case err != nil:
		s.logger.Error("Stopping bot: %v", err)
		s.sessions.addFlash(r, "error", "Failed to stop bot!")
	case stopped:
		s.sessions.addFlash(r, "success", "Bot stopped successfully!")
	default:
		s.sessions.addFlash(r, "info", "Bot was not running.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) addUser(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/", http.StatusSeeOther)

	if err := r.ParseForm(); err != nil {
		s.sessions.addFlash(r, "error", "Error adding user!")
		return
	}
	userID := strings.TrimSpace(r.PostFormValue("user_id"))
	if err := auth.ValidateUserID(userID); err != nil {
		s.sessions.addFlash(r, "error", "User ID must be numeric!")
		return
	}

	added, err := s.authorizer.AddUser(r.Context(), userID)
	switch {
	case err != nil:
		s.logger.Error("Adding user %s: %v", userID, err)
		s.sessions.addFlash(r, "error", "Failed to save user!")
	case added:
		s.sessions.addFlash(r, "success", fmt.Sprintf("User %s added successfully!", userID))
	default:
		s.sessions.addFlash(r, "warning", "User already exists!")
	}
}

func (s *Server) removeUser(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/", http.StatusSeeOther)

	userID := chi.URLParam(r, "userID")
	removed, err := s.authorizer.RemoveUser(r.Context(), userID)
	switch {
	case err != nil:
		s.logger.Error("Removing user %s: %v", userID, err)
		s.sessions.addFlash(r, "error", "Failed to remove user!")
	case removed:
		s.sessions.addFlash(r, "success", fmt.Sprintf("User %s removed successfully!", userID))
	default:
		s.sessions.addFlash(r, "warning", "User not found!")
	}
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	users, err := s.authorizer.Users(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not load authorized users"})
		return
	}
	st := s.supervisor.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"bot_running": st.Running,
		"state":       st.State,
		"last_error":  st.LastError,
		"user_count":  users.Len(),
		"policy":      users.Policy(),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.render(w, page, data); err != nil {
		s.logger.Error("Rendering %s: %v", page, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
