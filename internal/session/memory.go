package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"uirecorder/internal/models"
)

// MemoryRepository keeps sessions in process memory. Contents are lost on
// exit.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	settings map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: map[string]models.Session{}, settings: map[string]string{}}
}

func (r *MemoryRepository) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) Save(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID uint) ([]models.Session, error) {
	return r.filter(func(s models.Session) bool { return s.UserID == userID }), nil
}

func (r *MemoryRepository) ListByStatus(_ context.Context, status string) ([]models.Session, error) {
	return r.filter(func(s models.Session) bool { return s.Status == status }), nil
}

func (r *MemoryRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	list, _ := r.ListByUser(ctx, userID)
	return int64(len(list)), nil
}

func (r *MemoryRepository) DeleteStoppedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.Status == models.SessionStopped && s.StoppedAt != nil && s.StoppedAt.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) GetSetting(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings[key], nil
}

func (r *MemoryRepository) SetSetting(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = value
	return nil
}

func (r *MemoryRepository) filter(keep func(models.Session) bool) []models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, s := range r.sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}
