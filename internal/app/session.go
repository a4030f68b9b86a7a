package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/arete/pkg/logger"
	"github.com/okian/arete/pkg/metrics"
)

// Session describes the logged-in user.
type Session struct {
	Username  string `json:"username"`
	SessionID string `json:"sessionId,omitempty"`
	Created   bool   `json:"created"`
}

// Login makes username the active user and creates a default profile the
// first time the name is seen. Any non-empty name is accepted.
func (s *Service) Login(ctx context.Context, username string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Session{}, ErrInvalidUsername
	}

	unlock := s.lockUser(username)
	defer unlock()

	exists, err := s.gateway.Exists(ctx, username)
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	created := false
	if !exists {
		p, err := s.gateway.Load(ctx, username)
		if err != nil {
			return Session{}, fmt.Errorf("login: %w", err)
		}
		if err := s.gateway.Save(ctx, username, p); err != nil {
			return Session{}, fmt.Errorf("login: %w", err)
		}
		created = true
	}

	// The pointer moves only once the profile is stored.
	id, err := s.gateway.SetActiveUser(ctx, username)
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}

	s.logins.Add(1)
	s.touch(username)
	metrics.RecordLogin()
	s.logger.Info(ctx, "user logged in",
		logger.String("username", username),
		logger.Bool("created", created),
	)
	return Session{Username: username, SessionID: id, Created: created}, nil
}

// Logout clears the active session. Profile data is kept.
func (s *Service) Logout(ctx context.Context) error {
	username, _, err := s.gateway.ActiveUser(ctx)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if err := s.gateway.ClearActiveUser(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	metrics.RecordLogout()
	s.logger.Info(ctx, "user logged out", logger.String("username", username))
	return nil
}

// ActiveUser returns the logged-in username or ErrNoActiveSession.
func (s *Service) ActiveUser(ctx context.Context) (string, error) {
	username, ok, err := s.gateway.ActiveUser(ctx)
	if err != nil {
		return "", fmt.Errorf("active user: %w", err)
	}
	if !ok {
		return "", ErrNoActiveSession
	}
	return username, nil
}
