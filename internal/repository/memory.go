package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
)

// MemoryComplaintStore keeps complaints in process memory. Records are copied
// on the way in and out so callers never share state with the store.
type MemoryComplaintStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]models.Complaint
}

func NewMemoryComplaintStore() *MemoryComplaintStore {
	return &MemoryComplaintStore{rows: make(map[int64]models.Complaint)}
}

func (s *MemoryComplaintStore) Create(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	s.rows[c.ID] = cloneComplaint(*c)
	return nil
}

func (s *MemoryComplaintStore) Get(_ context.Context, id int64) (*models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("complaint not found with id: %d", id)
	}
	out := cloneComplaint(c)
	return &out, nil
}

func (s *MemoryComplaintStore) List(_ context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Complaint, 0, len(s.rows))
	for _, c := range s.rows {
		if f.UserID != 0 && c.UserID != f.UserID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		out = append(out, cloneComplaint(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryComplaintStore) Update(_ context.Context, c *models.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[c.ID]
	if !ok {
		return apperr.NotFound("complaint not found with id: %d", c.ID)
	}
	next := cloneComplaint(*c)
	next.UserID = cur.UserID
	next.Status = cur.Status
	next.CreatedAt = cur.CreatedAt
	s.rows[c.ID] = next
	return nil
}

func (s *MemoryComplaintStore) UpdateStatus(_ context.Context, id int64, status models.ComplaintStatus, now time.Time) (models.ComplaintStatus, *models.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.rows[id]
	if !ok {
		return "", nil, apperr.NotFound("complaint not found with id: %d", id)
	}
	old := c.Status
	c.Status = status
	c.UpdatedAt = now
	s.rows[id] = c
	out := cloneComplaint(c)
	return old, &out, nil
}

func (s *MemoryComplaintStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("complaint not found with id: %d", id)
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryComplaintStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.rows)), nil
}

func (s *MemoryComplaintStore) Ping(context.Context) error { return nil }

func cloneComplaint(c models.Complaint) models.Complaint {
	if c.Latitude != nil {
		v := *c.Latitude
		c.Latitude = &v
	}
	if c.Longitude != nil {
		v := *c.Longitude
		c.Longitude = &v
	}
	if c.Address != nil {
		v := *c.Address
		c.Address = &v
	}
	return c
}

// MemoryMediaStore keeps media metadata in process memory.
type MemoryMediaStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]models.Media
}

func NewMemoryMediaStore() *MemoryMediaStore {
	return &MemoryMediaStore{rows: make(map[int64]models.Media)}
}

func (s *MemoryMediaStore) Create(_ context.Context, m *models.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	m.ID = s.nextID
	s.rows[m.ID] = *m
	return nil
}

func (s *MemoryMediaStore) Get(_ context.Context, id int64) (*models.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("media not found with id: %d", id)
	}
	return &m, nil
}

func (s *MemoryMediaStore) ListByComplaint(_ context.Context, complaintID int64) ([]models.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Media, 0)
	for _, m := range s.rows {
		if m.ComplaintID == complaintID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryMediaStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("media not found with id: %d", id)
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryMediaStore) Ping(context.Context) error { return nil }

// MemoryNotificationStore keeps notifications in process memory.
type MemoryNotificationStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]models.Notification
}

func NewMemoryNotificationStore() *MemoryNotificationStore {
	return &MemoryNotificationStore{rows: make(map[int64]models.Notification)}
}

func (s *MemoryNotificationStore) Create(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	n.ID = s.nextID
	s.rows[n.ID] = cloneNotification(*n)
	return nil
}

func (s *MemoryNotificationStore) Get(_ context.Context, id int64) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("notification not found with id: %d", id)
	}
	out := cloneNotification(n)
	return &out, nil
}

func (s *MemoryNotificationStore) ListByUser(_ context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Notification, 0)
	for _, n := range s.rows {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		out = append(out, cloneNotification(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryNotificationStore) MarkRead(_ context.Context, id int64) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("notification not found with id: %d", id)
	}
	n.IsRead = true
	s.rows[id] = n
	out := cloneNotification(n)
	return &out, nil
}

func (s *MemoryNotificationStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("notification not found with id: %d", id)
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryNotificationStore) Ping(context.Context) error { return nil }

func cloneNotification(n models.Notification) models.Notification {
	if n.ComplaintID != nil {
		v := *n.ComplaintID
		n.ComplaintID = &v
	}
	return n
}

// MemoryUserStore keeps user accounts in process memory. Email and username
// are unique, matching the Postgres constraints.
type MemoryUserStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{rows: make(map[int64]models.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(u); err != nil {
		return err
	}
	s.nextID++
	u.ID = s.nextID
	s.rows[u.ID] = *u
	return nil
}

func (s *MemoryUserStore) Get(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.rows[id]
	if !ok {
		return nil, apperr.NotFound("user not found with id: %d", id)
	}
	return &u, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.rows {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found with email: %s", email)
}

func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.rows {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user not found with username: %s", username)
}

func (s *MemoryUserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.rows))
	for _, u := range s.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryUserStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[u.ID]
	if !ok {
		return apperr.NotFound("user not found with id: %d", u.ID)
	}
	if err := s.checkUnique(u); err != nil {
		return err
	}
	next := *u
	next.PasswordHash = cur.PasswordHash
	next.CreatedAt = cur.CreatedAt
	s.rows[u.ID] = next
	return nil
}

func (s *MemoryUserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[id]; !ok {
		return apperr.NotFound("user not found with id: %d", id)
	}
	delete(s.rows, id)
	return nil
}

func (s *MemoryUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.rows {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.rows {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) Ping(context.Context) error { return nil }

// checkUnique must be called with mu held.
func (s *MemoryUserStore) checkUnique(u *models.User) error {
	for id, other := range s.rows {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return apperr.Conflict("email already exists: %s", u.Email)
		}
		if other.Username == u.Username {
			return apperr.Conflict("username already exists: %s", u.Username)
		}
	}
	return nil
}
