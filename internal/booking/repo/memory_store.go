package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

// MemoryStore is an in-memory implementation of the repositories, used by
// tests and local development without PostgreSQL.
type MemoryStore struct {
	mu       sync.RWMutex
	tiers    map[string]domain.Tier
	options  map[fare.OptionName]domain.RideOption
	bookings map[uuid.UUID]*domain.Booking
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tiers:    make(map[string]domain.Tier),
		options:  make(map[fare.OptionName]domain.RideOption),
		bookings: make(map[uuid.UUID]*domain.Booking),
	}
}

// Tiers returns the store as a TierRepository.
func (s *MemoryStore) Tiers() TierRepository { return (*memoryTierRepo)(s) }

// Options returns the store as an OptionRepository.
func (s *MemoryStore) Options() OptionRepository { return (*memoryOptionRepo)(s) }

// Bookings returns the store as a BookingRepository.
func (s *MemoryStore) Bookings() BookingRepository { return (*memoryBookingRepo)(s) }

type memoryTierRepo MemoryStore

func (r *memoryTierRepo) GetByCode(ctx context.Context, code string) (domain.Tier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tiers[code]
	if !ok {
		return domain.Tier{}, domain.NewNotFoundError("tier", code)
	}
	return t, nil
}

func (r *memoryTierRepo) ListActive(ctx context.Context) ([]domain.Tier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Tier, 0, len(r.tiers))
	for _, t := range r.tiers {
		if t.Active {
			out = append(out, t)
		}
	}
	sortTiers(out)
	return out, nil
}

func (r *memoryTierRepo) List(ctx context.Context) ([]domain.Tier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Tier, 0, len(r.tiers))
	for _, t := range r.tiers {
		out = append(out, t)
	}
	sortTiers(out)
	return out, nil
}

func (r *memoryTierRepo) Upsert(ctx context.Context, tier domain.Tier) (domain.Tier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tier.ID == uuid.Nil {
		tier.ID = uuid.New()
		tier.CreatedAt = time.Now().UTC()
	}
	tier.UpdatedAt = time.Now().UTC()
	r.tiers[tier.Code] = tier
	return tier, nil
}

func sortTiers(tiers []domain.Tier) {
	sort.Slice(tiers, func(i, j int) bool {
		if tiers[i].Position != tiers[j].Position {
			return tiers[i].Position < tiers[j].Position
		}
		return tiers[i].Code < tiers[j].Code
	})
}

type memoryOptionRepo MemoryStore

func (r *memoryOptionRepo) Get(ctx context.Context, name fare.OptionName) (domain.RideOption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.options[name]
	if !ok {
		return domain.RideOption{}, domain.NewNotFoundError("ride option", string(name))
	}
	return o, nil
}

func (r *memoryOptionRepo) ListActive(ctx context.Context) ([]domain.RideOption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RideOption, 0, len(r.options))
	for _, o := range r.options {
		if o.Active {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryOptionRepo) Upsert(ctx context.Context, option domain.RideOption) (domain.RideOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	option.UpdatedAt = time.Now().UTC()
	r.options[option.Name] = option
	return option, nil
}

type memoryBookingRepo MemoryStore

func (r *memoryBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if _, exists := r.bookings[b.ID]; exists {
		return domain.NewAlreadyExistsError("booking", b.ID.String())
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memoryBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("booking", id.String())
	}
	cp := *b
	return &cp, nil
}

func (r *memoryBookingRepo) GetByCheckoutSession(ctx context.Context, sessionID string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.bookings {
		if b.CheckoutSession == sessionID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.NewNotFoundError("booking", sessionID)
}

func (r *memoryBookingRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []*domain.Booking
	for _, b := range r.bookings {
		if b.ClientID == clientID {
			cp := *b
			all = append(all, &cp)
		}
	}
	return paginate(all, limit, offset), nil
}

func (r *memoryBookingRepo) List(ctx context.Context, limit, offset int) ([]*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		cp := *b
		all = append(all, &cp)
	}
	return paginate(all, limit, offset), nil
}

func (r *memoryBookingRepo) Update(ctx context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[b.ID]; !ok {
		return domain.NewNotFoundError("booking", b.ID.String())
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func paginate(all []*domain.Booking, limit, offset int) []*domain.Booking {
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
