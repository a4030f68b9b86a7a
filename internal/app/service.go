// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/arete/internal/domain/catalog"
	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/internal/domain/scoring"
	"github.com/okian/arete/pkg/logger"
	"github.com/okian/arete/pkg/metrics"
)

// Default window sizes for history reads.
const (
	defaultHistoryDays     = 7
	defaultTrendDays       = 14
	defaultMaxHistoryLimit = 366
)

// Gateway is the persistence boundary the service loads and saves through.
type Gateway interface {
	Load(ctx context.Context, username string) (*model.UserProfile, error)
	Save(ctx context.Context, username string, p *model.UserProfile) error
	Exists(ctx context.Context, username string) (bool, error)
	ActiveUser(ctx context.Context) (string, bool, error)
	SetActiveUser(ctx context.Context, username string) (string, error)
	ClearActiveUser(ctx context.Context) error
	Today() model.DateKey
	Backend() string
	Close() error
}

// Service owns per-user tracker state transitions. Every mutation for one
// username runs load, mutate, rescore and save under that user's lock.
type Service struct {
	mu sync.RWMutex

	gateway Gateway
	engine  *scoring.Engine
	ranks   *catalog.RankTable

	historyDays     int
	trendDays       int
	maxHistoryLimit int

	// locks holds an entry only while some call holds or waits on it.
	locksMu sync.Mutex
	locks   map[string]*userLock

	// users grows by one entry per distinct username served. It is bounded
	// by the number of profiles in the store.
	usersMu sync.Mutex
	users   map[string]struct{}

	logins     atomic.Int64
	metricLogs atomic.Int64
	goalSets   atomic.Int64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithRankTable sets the rank ladder.
func WithRankTable(t *catalog.RankTable) Option {
	return func(s *Service) {
		if t != nil {
			s.ranks = t
		}
	}
}

// WithHistoryDays sets the default history table window.
func WithHistoryDays(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyDays = n
		}
	}
}

// WithTrendDays sets the default trend chart window.
func WithTrendDays(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trendDays = n
		}
	}
}

// WithMaxHistoryLimit caps requested history windows.
func WithMaxHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxHistoryLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over gateway.
func New(gateway Gateway, opts ...Option) *Service {
	s := &Service{
		gateway:         gateway,
		engine:          scoring.NewEngine(),
		ranks:           catalog.DefaultRankTable(),
		historyDays:     defaultHistoryDays,
		trendDays:       defaultTrendDays,
		maxHistoryLimit: defaultMaxHistoryLimit,
		locks:           make(map[string]*userLock),
		users:           make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("app")
	}
	return s
}

// Start marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true
	s.logger.Info(ctx, "tracker service started",
		logger.String("store", s.gateway.Backend()),
		logger.Int("historyDays", s.historyDays),
		logger.Int("trendDays", s.trendDays),
	)
	return nil
}

// Stop closes the persistence backend.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	if err := s.gateway.Close(); err != nil {
		s.logger.Error(ctx, "failed to close store", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "tracker service stopped")
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// lockUser serializes work on username and returns the matching unlock.
// The entry is dropped once no caller holds or waits on it.
func (s *Service) lockUser(username string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[username]
	if !ok {
		l = &userLock{}
		s.locks[username] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, username)
		}
		s.locksMu.Unlock()
	}
}

func (s *Service) touch(username string) {
	s.usersMu.Lock()
	s.users[username] = struct{}{}
	n := len(s.users)
	s.usersMu.Unlock()
	metrics.UpdateActiveProfiles(n)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	s.usersMu.Lock()
	users := len(s.users)
	s.usersMu.Unlock()

	s.locksMu.Lock()
	locked := len(s.locks)
	s.locksMu.Unlock()

	return map[string]interface{}{
		"started":         started,
		"store":           s.gateway.Backend(),
		"profilesServed":  users,
		"lockedUsers":     locked,
		"logins":          s.logins.Load(),
		"metricLogs":      s.metricLogs.Load(),
		"goalUpdates":     s.goalSets.Load(),
		"historyDays":     s.historyDays,
		"trendDays":       s.trendDays,
		"maxHistoryLimit": s.maxHistoryLimit,
	}
}
