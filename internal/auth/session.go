package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/example/rideshare/internal/api"
	"github.com/example/rideshare/internal/models"
)

// Session is the authenticated identity for this client process. Exactly
// one session is active at a time.
type Session struct {
	UserID      string
	Role        models.Role
	DisplayName string
	Token       string
}

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters long")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Manager owns the session lifecycle: login/register/logout plus silent
// resume from the persisted bearer token. The token file is the only
// state the client keeps on disk.
type Manager struct {
	client    *api.Client
	tokenPath string

	mu      sync.Mutex
	session *Session
}

func NewManager(client *api.Client, tokenPath string) *Manager {
	return &Manager{client: client, tokenPath: tokenPath}
}

func (m *Manager) Current() (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Session{}, false
	}
	return *m.session, true
}

func (m *Manager) Login(ctx context.Context, email, password string) (Session, error) {
	user, token, err := m.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return Session{}, err
	}
	return m.install(user, token)
}

type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Phone           string
	Role            models.Role
}

// Register validates the form locally before any network call, then
// creates the account and installs the returned session.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if in.Password != in.ConfirmPassword {
		return Session{}, ErrPasswordMismatch
	}
	if len(in.Password) < 8 {
		return Session{}, ErrPasswordTooShort
	}
	user, token, err := m.client.Register(ctx, api.RegisterRequest{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      in.Role,
	})
	if err != nil {
		return Session{}, err
	}
	return m.install(user, token)
}

// Resume attempts silent re-authentication from the persisted token.
// A failed profile fetch clears the stale token.
func (m *Manager) Resume(ctx context.Context) (Session, bool, error) {
	raw, err := os.ReadFile(m.tokenPath)
	if err != nil {
		return Session{}, false, nil
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return Session{}, false, nil
	}
	m.client.SetToken(token)
	user, err := m.client.Profile(ctx)
	if err != nil {
		m.client.SetToken("")
		_ = os.Remove(m.tokenPath)
		return Session{}, false, err
	}
	sess, err := m.install(user, token)
	if err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// Logout destroys the session and the persisted token.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	m.client.SetToken("")
	if err := os.Remove(m.tokenPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (m *Manager) install(user models.User, token string) (Session, error) {
	sess := Session{
		UserID:      user.ID,
		Role:        user.Role,
		DisplayName: user.DisplayName(),
		Token:       token,
	}
	m.client.SetToken(token)
	if err := m.persist(token); err != nil {
		return Session{}, fmt.Errorf("persist token: %w", err)
	}
	m.mu.Lock()
	m.session = &sess
	m.mu.Unlock()
	return sess, nil
}

func (m *Manager) persist(token string) error {
	if err := os.MkdirAll(filepath.Dir(m.tokenPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(m.tokenPath, []byte(token), 0o600)
}
