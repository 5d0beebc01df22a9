package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ecocampus/complaint-service/internal/domain"
)

// MemoryStore keeps every collection in process memory. It is the default
// backend when no Postgres DSN is configured, mirroring the original
// application's reset-on-restart state, and doubles as the test fixture.
// Complaints are held most-recent-first; insertion order is preserved so
// leaderboard ties stay stable.
type MemoryStore struct {
	mu            sync.RWMutex
	users         []domain.User
	complaints    []domain.Complaint
	notifications []domain.Notification
	history       []domain.ComplaintHistory
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Users returns the user repository view.
func (s *MemoryStore) Users() UserRepository { return &memoryUserRepo{store: s} }

// Complaints returns the complaint repository view.
func (s *MemoryStore) Complaints() ComplaintRepository { return &memoryComplaintRepo{store: s} }

// Notifications returns the notification repository view.
func (s *MemoryStore) Notifications() NotificationRepository {
	return &memoryNotificationRepo{store: s}
}

// History returns the audit trail repository view.
func (s *MemoryStore) History() HistoryRepository { return &memoryHistoryRepo{store: s} }

type memoryUserRepo struct {
	store *MemoryStore
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	stampTimes(&user.CreatedAt, &user.UpdatedAt)
	r.store.users = append(r.store.users, *user)
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.users {
		if r.store.users[i].ID == user.ID {
			user.UpdatedAt = time.Now()
			r.store.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for i := range r.store.users {
		if r.store.users[i].ID == id {
			user := r.store.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for i := range r.store.users {
		if r.store.users[i].Email == email {
			user := r.store.users[i]
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.User{}, r.store.users...), nil
}

type memoryComplaintRepo struct {
	store *MemoryStore
}

func (r *memoryComplaintRepo) Create(_ context.Context, complaint *domain.Complaint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stampTimes(&complaint.CreatedAt, &complaint.UpdatedAt)
	// head insertion keeps default views most-recent-first
	r.store.complaints = append([]domain.Complaint{*complaint}, r.store.complaints...)
	return nil
}

func (r *memoryComplaintRepo) Update(_ context.Context, complaint *domain.Complaint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.complaints {
		if r.store.complaints[i].ID == complaint.ID {
			complaint.UpdatedAt = time.Now()
			r.store.complaints[i] = *complaint
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memoryComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for i := range r.store.complaints {
		if r.store.complaints[i].ID == id {
			c := r.store.complaints[i]
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryComplaintRepo) ListWithFilter(_ context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []domain.Complaint
	skipped := 0
	for i := range r.store.complaints {
		c := r.store.complaints[i]
		if !matchesFilter(&c, filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		result = append(result, c)
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}

func (r *memoryComplaintRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.complaints {
		if r.store.complaints[i].ID == id {
			r.store.complaints = append(r.store.complaints[:i], r.store.complaints[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func matchesFilter(c *domain.Complaint, filter ComplaintFilter) bool {
	switch {
	case filter.DeletedOnly:
		if !c.IsDeleted() {
			return false
		}
	case !filter.IncludeDeleted:
		if c.IsDeleted() {
			return false
		}
	}
	if filter.OwnerID != nil && c.UserID != *filter.OwnerID {
		return false
	}
	if filter.PublicOnly && !c.IsPublic {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if c.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Year != nil && c.CreatedAt.Year() != *filter.Year {
		return false
	}
	if filter.Month != nil && int(c.CreatedAt.Month()) != *filter.Month {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Location), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			return false
		}
	}
	return true
}

type memoryNotificationRepo struct {
	store *MemoryStore
}

func (r *memoryNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	r.store.notifications = append([]domain.Notification{*notification}, r.store.notifications...)
	return nil
}

func (r *memoryNotificationRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	var result []domain.Notification
	skipped := 0
	for i := range r.store.notifications {
		if r.store.notifications[i].UserID != userID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		result = append(result, r.store.notifications[i])
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *memoryNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.notifications {
		if r.store.notifications[i].ID == id && r.store.notifications[i].UserID == userID {
			r.store.notifications[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memoryNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range r.store.notifications {
		if r.store.notifications[i].UserID == userID {
			r.store.notifications[i].IsRead = true
		}
	}
	return nil
}

type memoryHistoryRepo struct {
	store *MemoryStore
}

func (r *memoryHistoryRepo) Create(_ context.Context, entry *domain.ComplaintHistory) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.store.history = append(r.store.history, *entry)
	return nil
}

func (r *memoryHistoryRepo) ListByComplaint(_ context.Context, complaintID string, limit, offset int) ([]domain.ComplaintHistory, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	var result []domain.ComplaintHistory
	skipped := 0
	for i := range r.store.history {
		if r.store.history[i].ComplaintID != complaintID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		result = append(result, r.store.history[i])
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func stampTimes(createdAt, updatedAt *time.Time) {
	now := time.Now()
	if createdAt.IsZero() {
		*createdAt = now
	}
	if updatedAt.IsZero() {
		*updatedAt = *createdAt
	}
}
