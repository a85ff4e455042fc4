// Package state holds the background context's single source of truth for
// auth, membership, and quota state, and broadcasts changes to every
// listening UI context.
package state

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"promptpilot-backend/internal/models"
)

// EventType identifies a broadcast message.
type EventType string

// Broadcast message types sent to subscribed UI contexts.
const (
	EventAuthUpdated       EventType = "CENTRAL_AUTH_STATE_UPDATED"
	EventMembershipUpdated EventType = "CENTRAL_MEMBERSHIP_STATE_UPDATED"
	EventQuotaUpdated      EventType = "QUOTA_STATE_UPDATED"
)

// DefaultLogoutDelay is how long a provider-reported nil user is held back
// before it is believed. Provider auth streams flicker to nil briefly
// during token refresh.
const DefaultLogoutDelay = time.Second

// AuthState is the last-known login state. It crosses the bridge as the
// CHECK_AUTH_STATE response payload, hence the JSON tags.
type AuthState struct {
	LoggedIn bool             `json:"loggedIn"`
	User     *models.Identity `json:"user,omitempty"`
}

// Event is a fire-and-forget broadcast. Only the field matching Type is set.
type Event struct {
	Type       EventType
	Auth       *AuthState
	Membership *models.Membership
	Quota      *models.QuotaUsage
}

// subscriber channels are buffered; a UI context that stops draining loses
// broadcasts rather than blocking the background context.
const subscriberBuffer = 16

// Options configures a Broadcaster.
type Options struct {
	// LogoutDelay overrides DefaultLogoutDelay; zero means the default.
	LogoutDelay time.Duration
	// OnSessionEnd runs after a debounced logout commits (session cleanup).
	OnSessionEnd func()
	Logger       *zap.Logger
}

// Broadcaster owns the central {AuthState, MembershipState, QuotaState}
// and notifies subscribers on every replacement. It has an explicit
// lifecycle: construct with New, tear down with Close.
type Broadcaster struct {
	mu         sync.Mutex
	auth       AuthState
	membership *models.Membership
	quota      *models.QuotaUsage

	subs      map[int]chan Event
	nextSubID int

	logoutDelay   time.Duration
	pendingLogout *time.Timer
	onSessionEnd  func()

	logger *zap.Logger
	closed bool
}

// New creates a Broadcaster in the logged-out state.
func New(opts Options) *Broadcaster {
	delay := opts.LogoutDelay
	if delay <= 0 {
		delay = DefaultLogoutDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		subs:         make(map[int]chan Event),
		logoutDelay:  delay,
		onSessionEnd: opts.OnSessionEnd,
		logger:       logger,
	}
}

// Subscribe registers a listener and returns its id and event channel. The
// channel is closed by Unsubscribe or Close.
func (b *Broadcaster) Subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		ch := make(chan Event)
		close(ch)
		return -1, ch
	}
	id := b.nextSubID
	b.nextSubID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener. When the last listener leaves, any
// pending logout timer is cancelled so its callback cannot fire after
// teardown.
func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(ch)
	if len(b.subs) == 0 {
		b.cancelPendingLogoutLocked()
	}
}

// Close tears the broadcaster down: cancels any pending logout and closes
// every subscriber channel. Further updates are ignored.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.cancelPendingLogoutLocked()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Auth returns the last-known auth state.
func (b *Broadcaster) Auth() AuthState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth
}

// Membership returns the last-known membership state, or nil if none has
// been mirrored yet.
func (b *Broadcaster) Membership() *models.Membership {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.membership
}

// Quota returns the last-known quota state, or nil.
func (b *Broadcaster) Quota() *models.QuotaUsage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.quota
}

// HandleAuthEvent is the passive update path, fed from the identity
// provider's auth-state stream. A nil user is debounced: the logout only
// commits if no non-nil user arrives within the delay window. A non-nil
// user broadcasts immediately and discards any pending logout.
func (b *Broadcaster) HandleAuthEvent(user *models.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	if user != nil {
		b.cancelPendingLogoutLocked()
		b.auth = AuthState{LoggedIn: true, User: user}
		b.broadcastLocked(Event{Type: EventAuthUpdated, Auth: &AuthState{LoggedIn: true, User: user}})
		return
	}

	// Single pending slot: a second nil while one is pending is ignored.
	if b.pendingLogout != nil {
		return
	}
	b.logger.Debug("Provider reported nil user, debouncing logout", zap.Duration("delay", b.logoutDelay))
	b.pendingLogout = time.AfterFunc(b.logoutDelay, b.commitLogout)
}

// ManualUpdateAuthState is the active update path, invoked right after a
// credential-proxy round trip. Proxy-originated sessions never appear on
// the provider's stream, so this path applies immediately, nil included.
func (b *Broadcaster) ManualUpdateAuthState(user *models.Identity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.cancelPendingLogoutLocked()
	if user != nil {
		b.auth = AuthState{LoggedIn: true, User: user}
	} else {
		b.auth = AuthState{}
	}
	auth := b.auth
	b.broadcastLocked(Event{Type: EventAuthUpdated, Auth: &auth})
}

// UpdateMembership replaces the mirrored membership state and broadcasts it.
func (b *Broadcaster) UpdateMembership(m *models.Membership) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.membership = m
	b.broadcastLocked(Event{Type: EventMembershipUpdated, Membership: m})
}

// UpdateQuota replaces the quota state and broadcasts it.
func (b *Broadcaster) UpdateQuota(q *models.QuotaUsage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.quota = q
	b.broadcastLocked(Event{Type: EventQuotaUpdated, Quota: q})
}

func (b *Broadcaster) commitLogout() {
	b.mu.Lock()
	if b.closed || b.pendingLogout == nil {
		b.mu.Unlock()
		return
	}
	b.pendingLogout = nil
	b.auth = AuthState{}
	b.broadcastLocked(Event{Type: EventAuthUpdated, Auth: &AuthState{}})
	cleanup := b.onSessionEnd
	b.mu.Unlock()

	if cleanup != nil {
		cleanup()
	}
}

func (b *Broadcaster) cancelPendingLogoutLocked() {
	if b.pendingLogout != nil {
		b.pendingLogout.Stop()
		b.pendingLogout = nil
	}
}

func (b *Broadcaster) broadcastLocked(ev Event) {
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("Dropping broadcast for slow subscriber",
				zap.Int("subscriber", id), zap.String("event", string(ev.Type)))
		}
	}
}
