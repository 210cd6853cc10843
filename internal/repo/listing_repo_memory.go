package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/domain"
)

// MemoryListingRepo keeps listings in process memory. It backs db.driver=memory
// and the handler tests.
type MemoryListingRepo struct {
	mu     sync.RWMutex
	nextID uint64
	rows   map[uint64]domain.Listing
	now    func() time.Time
}

func NewMemoryListingRepo() *MemoryListingRepo {
	return &MemoryListingRepo{rows: map[uint64]domain.Listing{}, now: time.Now}
}

// WithClock replaces the creation-time source.
func (r *MemoryListingRepo) WithClock(now func() time.Time) *MemoryListingRepo {
	r.now = now
	return r
}

func (r *MemoryListingRepo) nameTaken(name string, except uint64) bool {
	for id, l := range r.rows {
		if id != except && l.DomainName == name {
			return true
		}
	}
	return false
}

func (r *MemoryListingRepo) Create(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(l.DomainName, 0) {
		return domain.ErrDuplicateListing
	}
	r.nextID++
	l.ID = r.nextID
	l.CreatedAt = r.now().UTC()
	r.rows[l.ID] = *l
	return nil
}

func (r *MemoryListingRepo) Update(_ context.Context, id uint64, ch domain.ListingChanges) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	if ch.DomainName != nil && r.nameTaken(*ch.DomainName, id) {
		return nil, domain.ErrDuplicateListing
	}
	ch.Apply(&cur)
	r.rows[id] = cur
	return &cur, nil
}

func (r *MemoryListingRepo) ListActive(_ context.Context) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Listing, 0, len(r.rows))
	for _, l := range r.rows {
		if l.Active {
			out = append(out, l)
		}
	}
	newestFirst(out)
	return out, nil
}

func (r *MemoryListingRepo) FindActiveByName(_ context.Context, name string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.rows {
		if l.Active && l.DomainName == name {
			return &l, nil
		}
	}
	return nil, domain.ErrListingNotFound
}

func (r *MemoryListingRepo) FindAll(_ context.Context) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Listing, 0, len(r.rows))
	for _, l := range r.rows {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns any listing by id, active or not.
func (r *MemoryListingRepo) Get(id uint64) (domain.Listing, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.rows[id]
	return l, ok
}

func newestFirst(ls []domain.Listing) {
	sort.Slice(ls, func(i, j int) bool {
		if !ls[i].CreatedAt.Equal(ls[j].CreatedAt) {
			return ls[i].CreatedAt.After(ls[j].CreatedAt)
		}
		return ls[i].ID > ls[j].ID
	})
}
