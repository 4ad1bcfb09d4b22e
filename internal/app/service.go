package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"tasknotes/internal/config"
	"tasknotes/internal/oauth"
	"tasknotes/internal/session"
	"tasknotes/internal/store"
)

type dataStore interface {
	GetUserByEmail(context.Context, string) (store.User, error)
	GetUserByID(context.Context, int64) (store.User, error)
	InsertUser(context.Context, string) (store.User, error)
	GetProject(context.Context, int64) (store.Project, error)
	ListProjectsByOwner(context.Context, int64) ([]store.Project, error)
	InsertProject(context.Context, store.NewProject) (store.Project, error)
	DeleteProject(context.Context, int64) (store.Project, error)
	UpdateProjectTitle(context.Context, store.PatchProject) error
	GetTask(context.Context, int64) (store.Task, error)
	ListTasksForOwner(context.Context, int64, int64) ([]store.Task, error)
	InsertTask(context.Context, store.NewTask) (store.Task, error)
	DeleteTask(context.Context, int64) (store.Task, error)
	Ping(context.Context) error
}

type sessionStore interface {
	Save(context.Context, string, session.Data) error
	Lookup(context.Context, string) (session.Data, error)
	Delete(context.Context, string) error
	SaveOAuthState(context.Context, string, string) error
	TakeOAuthState(context.Context, string) (string, error)
	Ping(context.Context) error
}

type authenticator interface {
	GenerateVerifier() string
	AuthCodeURL(state, verifier string) string
	Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (oauth.Profile, error)
}

type Service struct {
	cfg      config.Config
	store    dataStore
	sessions sessionStore
	auth     authenticator
	log      zerolog.Logger
}

func New(cfg config.Config, dataStore *store.PostgresStore, sessions *session.RedisStore, auth *oauth.Authenticator, log zerolog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: sessions,
		auth:     auth,
		log:      log,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) PingSessions(ctx context.Context) error {
	return s.sessions.Ping(ctx)
}

// ResolveCaller maps a session cookie value to a user id, re-checking the
// user row so a stale session cannot act for a vanished account. Fails
// closed with ErrIdentityUnresolved.
//
// With DevUserID configured every request resolves to that fixed user,
// bypassing sessions entirely. Local development only.
func (s *Service) ResolveCaller(ctx context.Context, sessionID string) (int64, error) {
	if s.cfg.DevUserID != 0 {
		return s.cfg.DevUserID, nil
	}
	if sessionID == "" {
		return 0, ErrIdentityUnresolved
	}
	data, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		return 0, ErrIdentityUnresolved
	}
	user, err := s.store.GetUserByID(ctx, data.UserID)
	if err != nil {
		return 0, ErrIdentityUnresolved
	}
	return user.ID, nil
}

// AuthorizeProject returns nil iff the caller owns the project. The project
// row is re-fetched on every call; decisions are never cached across
// requests.
func (s *Service) AuthorizeProject(ctx context.Context, callerID, projectID int64) error {
	project, err := s.store.GetProject(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOwnershipDenied
	}
	if err != nil {
		return fmt.Errorf("authorize project: %w", err)
	}
	if project.OwnerID != callerID {
		return ErrOwnershipDenied
	}
	return nil
}

// AuthorizeTask resolves task ownership transitively through the parent
// project; tasks carry no owner of their own.
func (s *Service) AuthorizeTask(ctx context.Context, callerID, taskID int64) error {
	task, err := s.store.GetTask(ctx, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOwnershipDenied
	}
	if err != nil {
		return fmt.Errorf("authorize task: %w", err)
	}
	return s.AuthorizeProject(ctx, callerID, task.ProjectID)
}

// CreateProject inserts a project owned by the caller. Any client-supplied
// ownerId is discarded.
func (s *Service) CreateProject(ctx context.Context, callerID int64, item store.NewProject) (store.Project, error) {
	item.OwnerID = callerID
	return s.store.InsertProject(ctx, item)
}

func (s *Service) ListProjects(ctx context.Context, callerID int64) ([]store.Project, error) {
	return s.store.ListProjectsByOwner(ctx, callerID)
}

func (s *Service) DeleteProject(ctx context.Context, callerID, projectID int64) (store.Project, error) {
	if err := s.AuthorizeProject(ctx, callerID, projectID); err != nil {
		return store.Project{}, err
	}
	deleted, err := s.store.DeleteProject(ctx, projectID)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost a race with a concurrent delete.
		return store.Project{}, ErrOwnershipDenied
	}
	if err != nil {
		return store.Project{}, fmt.Errorf("delete project: %w", err)
	}
	return deleted, nil
}

// UpdateProject applies the patch and echoes it back, matching the wire
// contract: PATCH responds with the patch payload, not the full row.
func (s *Service) UpdateProject(ctx context.Context, callerID int64, patch store.PatchProject) (store.PatchProject, error) {
	if err := s.AuthorizeProject(ctx, callerID, patch.ID); err != nil {
		return store.PatchProject{}, err
	}
	if err := s.store.UpdateProjectTitle(ctx, patch); err != nil {
		return store.PatchProject{}, err
	}
	return patch, nil
}

func (s *Service) CreateTask(ctx context.Context, callerID int64, item store.NewTask) (store.Task, error) {
	if err := s.AuthorizeProject(ctx, callerID, item.ProjectID); err != nil {
		return store.Task{}, err
	}
	return s.store.InsertTask(ctx, item)
}

// ListTasks scopes by owner and project in one statement; a projectId the
// caller does not own yields an empty list, not an error.
func (s *Service) ListTasks(ctx context.Context, callerID, projectID int64) ([]store.Task, error) {
	return s.store.ListTasksForOwner(ctx, callerID, projectID)
}

func (s *Service) DeleteTask(ctx context.Context, callerID, taskID int64) (store.Task, error) {
	if err := s.AuthorizeTask(ctx, callerID, taskID); err != nil {
		return store.Task{}, err
	}
	deleted, err := s.store.DeleteTask(ctx, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Task{}, ErrOwnershipDenied
	}
	if err != nil {
		return store.Task{}, fmt.Errorf("delete task: %w", err)
	}
	return deleted, nil
}

// BeginLogin parks CSRF state plus PKCE verifier and returns the provider
// authorization URL to redirect the browser to.
func (s *Service) BeginLogin(ctx context.Context) (string, error) {
	state := uuid.NewString()
	verifier := s.auth.GenerateVerifier()
	if err := s.sessions.SaveOAuthState(ctx, state, verifier); err != nil {
		return "", err
	}
	return s.auth.AuthCodeURL(state, verifier), nil
}

// CompleteLogin finishes the callback leg: state check, code exchange,
// profile fetch, first-login provisioning, session issuance. The returned
// session id goes into the cookie.
func (s *Service) CompleteLogin(ctx context.Context, state, code string) (string, error) {
	verifier, err := s.sessions.TakeOAuthState(ctx, state)
	if err != nil {
		return "", fmt.Errorf("unknown oauth state: %w", err)
	}

	token, err := s.auth.Exchange(ctx, code, verifier)
	if err != nil {
		return "", err
	}

	profile, err := s.auth.FetchProfile(ctx, token)
	if err != nil {
		return "", err
	}

	user, err := s.store.GetUserByEmail(ctx, profile.Email)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Info().Str("email", profile.Email).Msg("provisioning first-login user")
		user, err = s.store.InsertUser(ctx, profile.Email)
	}
	if err != nil {
		return "", fmt.Errorf("provision user: %w", err)
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Save(ctx, sessionID, session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: time.Now(),
	}); err != nil {
		return "", err
	}

	s.log.Info().Int64("user_id", user.ID).Msg("login completed")
	return sessionID, nil
}

// Logout invalidates the session. Unknown ids are ignored.
func (s *Service) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Msg("logout: session delete failed")
	}
}
