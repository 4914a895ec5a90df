package directory

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Directory used by tests and local development in
// place of the Ion database.
type Memory struct {
	mu            sync.RWMutex
	users         map[int64]User
	announcements map[int64]Announcement
	requests      map[int64]AnnouncementRequest
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[int64]User),
		announcements: make(map[int64]Announcement),
		requests:      make(map[int64]AnnouncementRequest),
	}
}

// AddUser stores or replaces a user.
func (m *Memory) AddUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// AddAnnouncement stores or replaces an announcement.
func (m *Memory) AddAnnouncement(a Announcement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announcements[a.ID] = a
}

// AddAnnouncementRequest stores or replaces an announcement request.
func (m *Memory) AddAnnouncementRequest(r AnnouncementRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
}

func (m *Memory) UserByID(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) UsersByID(_ context.Context, ids []int64) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return m.collect(func(u User) bool { return want[u.ID] }), nil
}

func (m *Memory) NewsEmailSubscribers(_ context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(u User) bool { return u.ReceiveNewsEmails }), nil
}

func (m *Memory) Announcement(_ context.Context, id int64) (*Announcement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.announcements[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) AnnouncementRequest(_ context.Context, id int64) (*AnnouncementRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

// collect must be called with m.mu held.
func (m *Memory) collect(keep func(User) bool) []User {
	var out []User
	for _, u := range m.users {
		if keep(u) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
