package auth_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/hrm/internal/auth"
	"github.com/frahmantamala/hrm/internal/core/events"
	"github.com/frahmantamala/hrm/internal/user"
)

// MockRepository implements auth.RepositoryAPI in memory, including the
// conditional update semantics of the SQL repository.
type MockRepository struct {
	mu        sync.Mutex
	users     map[int64]*user.User
	tenants   map[int64]int64
	nextID    int64
	failError error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:   make(map[int64]*user.User),
		tenants: make(map[int64]int64),
		nextID:  1,
	}
}

func (m *MockRepository) SetShouldFail(err error) {
	m.failError = err
}

func (m *MockRepository) AddUser(u *user.User) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextID
	m.nextID++
	cp := *u
	m.users[u.ID] = &cp
	return u
}

func (m *MockRepository) SetLatestTenant(userID, clientID int64) {
	m.tenants[userID] = clientID
}

func (m *MockRepository) Snapshot(email string) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	return m.Snapshot(email), nil
}

func (m *MockRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MockRepository) CreatePending(ctx context.Context, u *user.User) error {
	if m.failError != nil {
		return m.failError
	}
	if m.Snapshot(u.Email) != nil {
		return auth.ErrEmailTaken
	}
	m.AddUser(u)
	return nil
}

func (m *MockRepository) IssueCode(ctx context.Context, issue auth.CodeIssue) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[issue.UserID]
	if !ok || u.IsVerified {
		return false, nil
	}
	if u.VerificationCodeExpiresAt != nil && u.VerificationCodeExpiresAt.After(issue.Now) {
		return false, nil
	}
	expires := issue.ExpiresAt
	u.VerificationCode = issue.CodeHash
	u.VerificationCodeExpiresAt = &expires
	if issue.PasswordHash != "" {
		u.PasswordHash = issue.PasswordHash
	}
	return true, nil
}

func (m *MockRepository) MarkVerified(ctx context.Context, userID int64, codeHash string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.IsVerified || u.VerificationCode != codeHash {
		return false, nil
	}
	if u.VerificationCodeExpiresAt == nil || !u.VerificationCodeExpiresAt.After(now) {
		return false, nil
	}
	verifiedAt := now
	u.IsVerified = true
	u.IsActive = true
	u.VerificationCodeVerifiedAt = &verifiedAt
	u.VerificationCode = ""
	u.VerificationCodeExpiresAt = nil
	return true, nil
}

func (m *MockRepository) SetPassword(ctx context.Context, userID int64, oldHash, newHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok || u.PasswordHash != oldHash {
		return false, nil
	}
	u.PasswordHash = newHash
	return true, nil
}

func (m *MockRepository) TouchLastLogin(ctx context.Context, userID int64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		t := now
		u.LastLogin = &t
	}
	return nil
}

func (m *MockRepository) LatestTenantID(ctx context.Context, userID int64) (*int64, error) {
	id, ok := m.tenants[userID]
	if !ok {
		return nil, nil
	}
	return &id, nil
}

type MockBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func NewMockBlacklist() *MockBlacklist {
	return &MockBlacklist{revoked: make(map[string]time.Time)}
}

func (b *MockBlacklist) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) (bool, error) {
	if b.err != nil {
		return false, b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.revoked[jti]; ok {
		return false, nil
	}
	b.revoked[jti] = expiresAt
	return true, nil
}

// RecordingPublisher captures events instead of dispatching them.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func (p *RecordingPublisher) LastCode() string {
	evs := p.Events()
	for i := len(evs) - 1; i >= 0; i-- {
		if ev, ok := evs[i].(*events.VerificationCodeIssuedEvent); ok {
			return ev.Code
		}
	}
	return ""
}

func (p *RecordingPublisher) LastResetURL() string {
	evs := p.Events()
	for i := len(evs) - 1; i >= 0; i-- {
		if ev, ok := evs[i].(*events.PasswordResetRequestedEvent); ok {
			return ev.ResetURL
		}
	}
	return ""
}

var errDatabase = errors.New("database error")
