package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Missray24/missray-cab-app-sub000/internal/booking/domain"
	"github.com/Missray24/missray-cab-app-sub000/internal/fare"
)

// TierRepository loads and mutates the service tier catalog.
type TierRepository interface {
	GetByCode(ctx context.Context, code string) (domain.Tier, error)
	ListActive(ctx context.Context) ([]domain.Tier, error)
	List(ctx context.Context) ([]domain.Tier, error)
	Upsert(ctx context.Context, tier domain.Tier) (domain.Tier, error)
}

// OptionRepository loads and mutates the ride option catalog.
type OptionRepository interface {
	Get(ctx context.Context, name fare.OptionName) (domain.RideOption, error)
	ListActive(ctx context.Context) ([]domain.RideOption, error)
	Upsert(ctx context.Context, option domain.RideOption) (domain.RideOption, error)
}

// BookingRepository persists bookings and their status history.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByCheckoutSession(ctx context.Context, sessionID string) (*domain.Booking, error)
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]*domain.Booking, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}
