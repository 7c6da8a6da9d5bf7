package auth

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdiary/internal/domain/models"
	"github.com/mamadbah2/farmdiary/internal/observability"
	"github.com/mamadbah2/farmdiary/internal/repository/storage"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

var (
	// ErrMissingFields indicates a required form field was left blank.
	ErrMissingFields = errors.New("please fill in all fields")
	// ErrPasswordMismatch indicates the confirmation differs from the password.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrPasswordTooShort indicates the password is under MinPasswordLength.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("an account with this email already exists")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotAuthenticated is returned when no user is signed in.
	ErrNotAuthenticated = errors.New("not signed in")
)

// Options selects the storage keys of one application's user table.
type Options struct {
	Realm           string
	UsersKey        string
	CurrentUserKey  string
	DefaultLocation string
}

// FarmDiaryOptions are the keys used by the farm diary.
func FarmDiaryOptions() Options {
	return Options{
		Realm:           "farmdiary",
		UsersKey:        "farmDiaryUsers",
		CurrentUserKey:  "currentFarmUser",
		DefaultLocation: models.DefaultLocation,
	}
}

// WeatherProOptions are the keys used by the weather app.
func WeatherProOptions() Options {
	return Options{
		Realm:          "weatherpro",
		UsersKey:       "weatherProUsers",
		CurrentUserKey: "weatherProCurrentUser",
	}
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Location        string `json:"location"`
}

// Manager owns a user table and the single signed-in user.
type Manager struct {
	store   storage.Store
	opts    Options
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *zap.Logger

	mu      sync.Mutex
	current *models.User
}

// NewManager wires a manager over the given store.
func NewManager(store storage.Store, opts Options, clock clockwork.Clock, metrics *observability.Metrics, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.Nop()
	}
	return &Manager{store: store, opts: opts, clock: clock, metrics: metrics, logger: logger}
}

// Restore reloads the persisted signed-in user, if any.
func (m *Manager) Restore(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var user models.User
	found, err := storage.LoadJSON(ctx, m.store, m.opts.CurrentUserKey, &user)
	if err != nil {
		return nil, err
	}
	if !found || user.Email == "" {
		return nil, ErrNotAuthenticated
	}

	m.current = &user
	m.logger.Info("session restored", zap.String("email", user.Email))
	return newSession(user), nil
}

// Register creates an account and signs it in.
func (m *Manager) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)

	if name == "" || email == "" || in.Password == "" {
		return nil, m.fail("register", ErrMissingFields)
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return nil, m.fail("register", ErrPasswordMismatch)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, m.fail("register", ErrPasswordTooShort)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	if _, exists := users[email]; exists {
		return nil, m.fail("register", ErrEmailTaken)
	}

	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = m.opts.DefaultLocation
	}

	user := models.User{
		Name:      name,
		Email:     email,
		Password:  in.Password,
		Location:  location,
		CreatedAt: m.clock.Now().UTC(),
	}
	users[email] = user

	if err := storage.SaveJSON(ctx, m.store, m.opts.UsersKey, users); err != nil {
		return nil, err
	}
	if err := m.setCurrent(ctx, user); err != nil {
		return nil, err
	}

	m.metrics.AuthAttempts.WithLabelValues(m.opts.Realm, "register", "success").Inc()
	m.logger.Info("user registered", zap.String("email", email))
	return newSession(user), nil
}

// Login signs in an existing user.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, m.fail("login", ErrMissingFields)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := users[email]
	if !ok || user.Password != password {
		return nil, m.fail("login", ErrInvalidCredentials)
	}

	if err := m.setCurrent(ctx, user); err != nil {
		return nil, err
	}

	m.metrics.AuthAttempts.WithLabelValues(m.opts.Realm, "login", "success").Inc()
	m.logger.Info("user signed in", zap.String("email", email))
	return newSession(user), nil
}

// Logout forgets the signed-in user. Collections stay in storage.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.logger.Info("user signed out", zap.String("email", m.current.Email))
	}
	m.current = nil
	if err := m.store.Delete(ctx, m.opts.CurrentUserKey); err != nil {
		return fmt.Errorf("clear current user: %w", err)
	}
	return nil
}

// Current returns the signed-in session.
func (m *Manager) Current() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil, ErrNotAuthenticated
	}
	return newSession(*m.current), nil
}

// Users returns the profiles of every registered user, ordered by email.
func (m *Manager) Users(ctx context.Context) ([]models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *Manager) loadUsers(ctx context.Context) (map[string]models.User, error) {
	users := make(map[string]models.User)
	if _, err := storage.LoadJSON(ctx, m.store, m.opts.UsersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m *Manager) setCurrent(ctx context.Context, user models.User) error {
	if err := storage.SaveJSON(ctx, m.store, m.opts.CurrentUserKey, user); err != nil {
		return err
	}
	m.current = &user
	return nil
}

func (m *Manager) fail(action string, err error) error {
	m.metrics.AuthAttempts.WithLabelValues(m.opts.Realm, action, "failure").Inc()
	m.logger.Debug("auth rejected", zap.String("action", action), zap.Error(err))
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
