package sheet

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"github.com/calvinalkan/jobsheet/internal/kv"
)

const avatarBaseURL = "https://api.dicebear.com/7.x/initials/svg?seed="

// User is the logged-in identity. It is an attribution tag, nothing more.
type User struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// AvatarURL returns the initials avatar for name.
func AvatarURL(name string) string {
	return avatarBaseURL + url.QueryEscape(name)
}

// QuickLogins are the preset identities offered next to the login form.
var QuickLogins = map[string]User{
	"john": {Email: "john@company.com", Name: "John Doe"},
	"jane": {Email: "jane@company.com", Name: "Jane Smith"},
}

// Session holds the current user and persists it under [SessionKey].
type Session struct {
	storage kv.Storage
	delay   time.Duration
	log     logrus.FieldLogger
	user    *User
}

// NewSession returns a session with nobody logged in. delay is waited before
// a form login completes.
func NewSession(storage kv.Storage, delay time.Duration, logger logrus.FieldLogger) *Session {
	if storage == nil {
		panic("sheet.NewSession: storage is nil")
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Session{storage: storage, delay: delay, log: logger}
}

// Login establishes a user from the login form. The email is lowercased and
// the name trimmed; both must be non-empty.
func (s *Session) Login(ctx context.Context, email, name string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" || name == "" {
		return User{}, ErrLoginFieldsRequired
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return User{}, fmt.Errorf("login: %w", ctx.Err())
		case <-timer.C:
		}
	}

	user := User{Email: email, Name: name, Avatar: AvatarURL(name)}

	err := s.establish(ctx, user)
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// QuickLogin establishes one of [QuickLogins] without waiting.
func (s *Session) QuickLogin(ctx context.Context, preset string) (User, error) {
	user, ok := QuickLogins[strings.ToLower(strings.TrimSpace(preset))]
	if !ok {
		return User{}, fmt.Errorf("%w: %q (want john or jane)", ErrUnknownQuickLogin, preset)
	}

	err := s.establish(ctx, user)
	if err != nil {
		return User{}, err
	}

	return user, nil
}

// Current returns the logged-in user, restoring it from storage on first use.
func (s *Session) Current(ctx context.Context) (User, error) {
	if s.user != nil {
		return *s.user, nil
	}

	data, err := s.storage.Get(ctx, SessionKey)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return User{}, ErrNotLoggedIn
		}

		return User{}, fmt.Errorf("restoring session: %w", err)
	}

	var user User

	err = sonic.ConfigStd.Unmarshal(data, &user)
	if err != nil {
		return User{}, fmt.Errorf("%w: %w", ErrCorruptSession, err)
	}

	if user.Email == "" {
		return User{}, ErrNotLoggedIn
	}

	s.user = &user

	return user, nil
}

// Logout forgets the user and deletes the persisted session.
func (s *Session) Logout(ctx context.Context) error {
	s.user = nil

	err := s.storage.Delete(ctx, SessionKey)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Debug("logged out")

	return nil
}

func (s *Session) establish(ctx context.Context, user User) error {
	data, err := sonic.ConfigStd.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	err = s.storage.Set(ctx, SessionKey, data)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	s.user = &user
	s.log.WithField("email", user.Email).Debug("logged in")

	return nil
}
