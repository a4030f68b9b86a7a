// Package persistence loads and saves whole user profiles through a
// key-value store. It is the only I/O boundary of the tracker.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/arete/internal/adapters/repository"
	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/pkg/logger"
	"github.com/okian/arete/pkg/metrics"
)

const defaultPrefix = "arete"

// Gateway maps usernames to stored profiles and tracks the active session.
type Gateway struct {
	store  repository.Store
	prefix string
	loc    *time.Location
	now    func() time.Time
	log    logger.Logger
}

// Option applies a configuration option to the Gateway.
type Option func(*Gateway)

// WithPrefix sets the key prefix: <prefix>Username and <prefix>Data_<user>.
func WithPrefix(prefix string) Option {
	return func(g *Gateway) {
		if p := strings.TrimSpace(prefix); p != "" {
			g.prefix = p
		}
	}
}

// WithLocation sets the time zone used to derive today's date key.
func WithLocation(loc *time.Location) Option {
	return func(g *Gateway) {
		if loc != nil {
			g.loc = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// New creates a Gateway over store.
func New(store repository.Store, opts ...Option) *Gateway {
	g := &Gateway{
		store:  store,
		prefix: defaultPrefix,
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = logger.Named("persistence")
	}
	return g
}

// Today returns the current date key in the configured location.
func (g *Gateway) Today() model.DateKey {
	return model.DateKeyFor(g.now(), g.loc)
}

// SessionKey is the key holding the active username.
func (g *Gateway) SessionKey() string {
	return g.prefix + "Username"
}

// SessionIDKey is the key holding the opaque id issued at login.
func (g *Gateway) SessionIDKey() string {
	return g.prefix + "UserId"
}

// DataKey is the key holding username's profile.
func (g *Gateway) DataKey(username string) string {
	return g.prefix + "Data_" + username
}

// Backend returns the store's backend name.
func (g *Gateway) Backend() string {
	return g.store.Name()
}

// Load returns the stored profile for username, or a default profile when
// none is stored or the stored document cannot be decoded. The returned
// profile has an entry for today and a recomputed cumulative total. Load
// never writes.
func (g *Gateway) Load(ctx context.Context, username string) (*model.UserProfile, error) {
	username, err := canonical(username)
	if err != nil {
		return nil, err
	}

	raw, err := g.store.Get(ctx, g.DataKey(username))
	var p *model.UserProfile
	switch {
	case errors.Is(err, repository.ErrNotFound):
		p = model.NewProfile()
	case err != nil:
		return nil, fmt.Errorf("load %q: %w", username, err)
	default:
		p = g.decode(ctx, username, raw)
	}
	metrics.RecordProfileLoad()

	p.Normalize()
	p.EnsureEntry(g.Today())
	p.RecomputeCumulative()
	return p, nil
}

func (g *Gateway) decode(ctx context.Context, username, raw string) *model.UserProfile {
	var p model.UserProfile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		g.log.Warn(ctx, "stored profile unreadable, starting from defaults",
			logger.String("username", username),
			logger.Error(err),
		)
		metrics.RecordProfileRecovery("malformed")
		return model.NewProfile()
	}
	for day := range p.History {
		if _, err := model.ParseDateKey(string(day)); err != nil {
			g.log.Warn(ctx, "stored entry has a non-ISO date key, keeping it",
				logger.String("username", username),
				logger.String("day", string(day)),
			)
		}
	}
	return &p
}

// Save overwrites the stored profile for username.
func (g *Gateway) Save(ctx context.Context, username string, p *model.UserProfile) error {
	username, err := canonical(username)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("save %q: %w", username, ErrNilProfile)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode %q: %w", username, err)
	}
	if err := g.store.Set(ctx, g.DataKey(username), string(raw)); err != nil {
		return fmt.Errorf("save %q: %w", username, err)
	}
	metrics.RecordProfileSave()
	return nil
}

// Exists reports whether a profile is stored for username.
func (g *Gateway) Exists(ctx context.Context, username string) (bool, error) {
	username, err := canonical(username)
	if err != nil {
		return false, err
	}
	_, err = g.store.Get(ctx, g.DataKey(username))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("exists %q: %w", username, err)
	}
	return true, nil
}

// ActiveUser returns the session username and whether one is set.
func (g *Gateway) ActiveUser(ctx context.Context) (string, bool, error) {
	v, err := g.store.Get(ctx, g.SessionKey())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("active user: %w", err)
	}
	if strings.TrimSpace(v) == "" {
		return "", false, nil
	}
	return v, true, nil
}

// SetActiveUser records username as the session user and issues a new
// session id.
func (g *Gateway) SetActiveUser(ctx context.Context, username string) (string, error) {
	username, err := canonical(username)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := g.store.Set(ctx, g.SessionIDKey(), id); err != nil {
		return "", fmt.Errorf("set session id: %w", err)
	}
	if err := g.store.Set(ctx, g.SessionKey(), username); err != nil {
		return "", fmt.Errorf("set active user: %w", err)
	}
	return id, nil
}

// SessionID returns the id issued at the last login, if any.
func (g *Gateway) SessionID(ctx context.Context) (string, error) {
	v, err := g.store.Get(ctx, g.SessionIDKey())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("session id: %w", err)
	}
	return v, nil
}

// ClearActiveUser removes the session pointer and id. Profile data is kept.
func (g *Gateway) ClearActiveUser(ctx context.Context) error {
	if err := g.store.Delete(ctx, g.SessionIDKey()); err != nil {
		return fmt.Errorf("clear session id: %w", err)
	}
	if err := g.store.Delete(ctx, g.SessionKey()); err != nil {
		return fmt.Errorf("clear active user: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (g *Gateway) Close() error {
	return g.store.Close()
}

func canonical(username string) (string, error) {
	u := strings.TrimSpace(username)
	if u == "" {
		return "", ErrInvalidUsername
	}
	return u, nil
}
