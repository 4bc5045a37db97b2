package api

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensorice/internal/domain"
)

// Status of the backend session.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
)

// User is the account behind the session.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Session tracks the authentication state of a Client.
type Session struct {
	client *Client

	mu     sync.RWMutex
	status Status
	user   *User
}

// NewSession starts in the loading state until Bootstrap or Login runs.
func NewSession(client *Client) *Session {
	s := &Session{client: client, status: StatusLoading}
	client.OnUnauthenticated(s.expire)
	return s
}

// Bootstrap restores an existing session from the cookie jar.
//
// The profile is fetched; on a 401 the session is refreshed exactly once and
// the profile fetched again. A failed refresh or a failed second profile
// leaves the session unauthenticated. Any other profile failure logs out.
func (s *Session) Bootstrap(ctx context.Context) error {
	user, err := s.client.Profile(ctx)
	if err == nil {
		s.set(StatusAuthenticated, user)
		return nil
	}

	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		if lerr := s.client.Logout(ctx); lerr != nil {
			log.Warn().Err(lerr).Msg("logout after failed profile fetch failed")
		}
		s.set(StatusUnauthenticated, nil)
		return err
	}

	if err := s.client.Refresh(ctx); err != nil {
		if lerr := s.client.Logout(ctx); lerr != nil {
			log.Warn().Err(lerr).Msg("logout after failed refresh failed")
		}
		s.set(StatusUnauthenticated, nil)
		return err
	}

	user, err = s.client.Profile(ctx)
	if err != nil {
		s.set(StatusUnauthenticated, nil)
		return err
	}

	s.set(StatusAuthenticated, user)
	return nil
}

// Login signs in with credentials. A failed login leaves the state unchanged.
func (s *Session) Login(ctx context.Context, username, password string) error {
	user, err := s.client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	s.set(StatusAuthenticated, user)
	log.Info().Str("username", user.Username).Msg("signed in to backend")
	return nil
}

// Logout ends the session. On failure the state is unchanged.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		return err
	}
	s.set(StatusUnauthenticated, nil)
	return nil
}

// Status returns the current session status
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// User returns the signed-in user, nil unless authenticated
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) expire() {
	s.set(StatusUnauthenticated, nil)
	log.Warn().Msg("backend session expired")
}

func (s *Session) set(status Status, user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.user = user
}
