package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/ivanbelmonte/fincalia-backend/pkg/errors"
)

type leaseClient interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	DraftLeaseKey(propertyID string) string
}

// Registry enforces at most one active session per property. The in-process
// map is authoritative for this instance; the Redis lease extends the
// guarantee across instances when a lease client is configured.
type Registry struct {
	mu         sync.Mutex
	byProperty map[uuid.UUID]*Session

	lease    leaseClient
	leaseTTL time.Duration
}

// NewRegistry constructs a session registry. The lease client may be nil for
// single-instance deployments and tests.
func NewRegistry(lease leaseClient, leaseTTL time.Duration) *Registry {
	return &Registry{
		byProperty: make(map[uuid.UUID]*Session),
		lease:      lease,
		leaseTTL:   leaseTTL,
	}
}

// Add registers the session, failing with ConflictingSession when the
// property already has one (locally or via the cross-instance lease).
func (r *Registry) Add(ctx context.Context, session *Session) error {
	r.mu.Lock()
	if _, exists := r.byProperty[session.PropertyID]; exists {
		r.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflictingSession, "property already has an active draft session")
	}
	r.byProperty[session.PropertyID] = session
	r.mu.Unlock()

	if r.lease == nil {
		return nil
	}
	key := r.lease.DraftLeaseKey(session.PropertyID.String())
	ok, err := r.lease.SetNX(ctx, key, session.ID.String(), r.leaseTTL)
	if err != nil {
		r.evict(session.PropertyID)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire draft lease")
	}
	if !ok {
		r.evict(session.PropertyID)
		return pkgerrors.New(pkgerrors.CodeConflictingSession, "property already has an active draft session")
	}
	return nil
}

// Get returns the active session for the property, if any.
func (r *Registry) Get(propertyID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.byProperty[propertyID]
	return session, ok
}

// Find returns the active session with the given session ID, if any.
func (r *Registry) Find(sessionID uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.byProperty {
		if session.ID == sessionID {
			return session, true
		}
	}
	return nil, false
}

// Remove drops the session from the registry and releases its lease. Lease
// release failures are swallowed; the lease TTL bounds the damage.
func (r *Registry) Remove(ctx context.Context, session *Session) {
	r.evict(session.PropertyID)
	if r.lease != nil {
		_ = r.lease.Del(ctx, r.lease.DraftLeaseKey(session.PropertyID.String()))
	}
}

// Stale returns active sessions older than maxAge.
func (r *Registry) Stale(maxAge time.Duration) []*Session {
	cutoff := time.Now().UTC().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Session
	for _, session := range r.byProperty {
		if session.StartedAt.Before(cutoff) {
			out = append(out, session)
		}
	}
	return out
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byProperty)
}

func (r *Registry) evict(propertyID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byProperty, propertyID)
}
