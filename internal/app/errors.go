package service

import (
	"errors"

	"github.com/okian/arete/internal/adapters/persistence"
	"github.com/okian/arete/internal/domain/scoring"
)

// Sentinel kinds returned by the service.
var (
	ErrNoActiveSession = errors.New("no active session")
	ErrInvalidUsername = persistence.ErrInvalidUsername
	ErrUnknownMetric   = scoring.ErrUnknownMetric
)
