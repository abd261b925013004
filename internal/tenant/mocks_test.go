package tenant_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/frahmantamala/hrm/internal/tenant"
	"github.com/frahmantamala/hrm/internal/transport"
)

var errDatabase = errors.New("database unavailable")

// MockRepository keeps clients, memberships and member activity in memory.
type MockRepository struct {
	mu          sync.Mutex
	nextID      int64
	clients     map[int64]*tenant.Client
	memberships map[int64]map[int64]bool
	activeUsers map[int64]bool
	shouldFail  bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		nextID:      1,
		clients:     make(map[int64]*tenant.Client),
		memberships: make(map[int64]map[int64]bool),
		activeUsers: make(map[int64]bool),
	}
}

func (m *MockRepository) SetShouldFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFail = fail
}

// AddClient stores c as-is and returns it with an id assigned.
func (m *MockRepository) AddClient(c *tenant.Client) *tenant.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	cp := *c
	m.clients[c.ID] = &cp
	return c
}

func (m *MockRepository) AddMember(userID, clientID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addMember(userID, clientID)
}

func (m *MockRepository) addMember(userID, clientID int64) {
	if m.memberships[userID] == nil {
		m.memberships[userID] = make(map[int64]bool)
	}
	m.memberships[userID][clientID] = true
	if _, ok := m.activeUsers[userID]; !ok {
		m.activeUsers[userID] = true
	}
}

func (m *MockRepository) UserActive(userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeUsers[userID]
}

func (m *MockRepository) Stored(clientID int64) *tenant.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[clientID]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

func (m *MockRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func (m *MockRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return false, errDatabase
	}
	for _, c := range m.clients {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) CountMemberships(ctx context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return 0, errDatabase
	}
	return int64(len(m.memberships[userID])), nil
}

func (m *MockRepository) Create(ctx context.Context, c *tenant.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return errDatabase
	}
	c.ID = m.nextID
	m.nextID++
	cp := *c
	m.clients[c.ID] = &cp
	if c.OwnerID != nil {
		m.addMember(*c.OwnerID, c.ID)
	}
	return nil
}

func (m *MockRepository) Remove(ctx context.Context, clientID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clients, clientID)
	for _, set := range m.memberships {
		delete(set, clientID)
	}
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, clientID int64) (*tenant.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errDatabase
	}
	c, ok := m.clients[clientID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *MockRepository) IsMember(ctx context.Context, userID, clientID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memberships[userID][clientID], nil
}

func (m *MockRepository) ListForUser(ctx context.Context, userID int64, page transport.PageRequest) ([]*tenant.Client, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, 0, errDatabase
	}
	var out []*tenant.Client
	for id := range m.memberships[userID] {
		c := m.clients[id]
		if c == nil || c.SchemaName == "public" {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	total := int64(len(out))
	start := page.Offset()
	if start > len(out) {
		start = len(out)
	}
	end := start + page.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (m *MockRepository) Update(ctx context.Context, c *tenant.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return errDatabase
	}
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *MockRepository) Deactivate(ctx context.Context, clientID int64, domain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return errDatabase
	}
	c := m.clients[clientID]
	c.IsActive = false
	c.Domain = domain
	for userID, set := range m.memberships {
		if set[clientID] {
			m.activeUsers[userID] = false
		}
	}
	return nil
}

func (m *MockRepository) Reactivate(ctx context.Context, clientID int64, domain string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return errDatabase
	}
	c := m.clients[clientID]
	c.IsActive = true
	c.Domain = domain
	for userID, set := range m.memberships {
		if set[clientID] {
			m.activeUsers[userID] = true
		}
	}
	return nil
}

type FakeProvisioner struct {
	Schemas []string
	Err     error
}

func (f *FakeProvisioner) Provision(ctx context.Context, schema string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Schemas = append(f.Schemas, schema)
	return nil
}

type enrollment struct {
	Schema string
	UserID int64
}

type FakeEnroller struct {
	Enrolled []enrollment
	Err      error
}

func (f *FakeEnroller) EnrollOwner(ctx context.Context, schema string, userID int64) error {
	if f.Err != nil {
		return f.Err
	}
	f.Enrolled = append(f.Enrolled, enrollment{Schema: schema, UserID: userID})
	return nil
}
